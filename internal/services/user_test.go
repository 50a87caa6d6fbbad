package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/fit-tracker/internal/models"
	"github.com/sbilibin2017/fit-tracker/internal/services"
)

func TestUserService_GetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := &models.UserDB{ID: 1, Username: "alice", Email: "alice@example.com"}

	t.Run("cache hit skips the store", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		mockCache := services.NewMockUserCache(ctrl)
		svc := services.NewUserService(mockReader, mockCache)

		mockCache.EXPECT().Get(gomock.Any(), int64(1)).Return(user, nil)

		got, err := svc.GetByID(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("cache miss reads the store and backfills", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		mockCache := services.NewMockUserCache(ctrl)
		svc := services.NewUserService(mockReader, mockCache)

		mockCache.EXPECT().Get(gomock.Any(), int64(1)).Return(nil, nil)
		mockReader.EXPECT().GetByID(gomock.Any(), int64(1)).Return(user, nil)
		mockCache.EXPECT().Set(gomock.Any(), user).Return(nil)

		got, err := svc.GetByID(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("cache failure falls back to the store", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		mockCache := services.NewMockUserCache(ctrl)
		svc := services.NewUserService(mockReader, mockCache)

		mockCache.EXPECT().Get(gomock.Any(), int64(1)).Return(nil, errors.New("redis down"))
		mockReader.EXPECT().GetByID(gomock.Any(), int64(1)).Return(user, nil)
		mockCache.EXPECT().Set(gomock.Any(), user).Return(errors.New("redis down"))

		got, err := svc.GetByID(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("missing user", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		mockCache := services.NewMockUserCache(ctrl)
		svc := services.NewUserService(mockReader, mockCache)

		mockCache.EXPECT().Get(gomock.Any(), int64(77)).Return(nil, nil)
		mockReader.EXPECT().GetByID(gomock.Any(), int64(77)).Return(nil, nil)

		got, err := svc.GetByID(context.Background(), 77)
		assert.ErrorIs(t, err, services.ErrUserNotFound)
		assert.Nil(t, got)
	})

	t.Run("nil cache", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewUserService(mockReader, nil)

		mockReader.EXPECT().GetByID(gomock.Any(), int64(1)).Return(user, nil)

		got, err := svc.GetByID(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, user, got)
	})

	t.Run("store error", func(t *testing.T) {
		mockReader := services.NewMockUserReader(ctrl)
		svc := services.NewUserService(mockReader, nil)

		mockReader.EXPECT().GetByID(gomock.Any(), int64(1)).Return(nil, errors.New("db error"))

		got, err := svc.GetByID(context.Background(), 1)
		assert.EqualError(t, err, "db error")
		assert.Nil(t, got)
	})
}
