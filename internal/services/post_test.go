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

func TestPostService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	posts := []models.PostDB{
		{ID: 1, Title: "morning run", OwnerID: 1},
		{ID: 2, Title: "leg day", OwnerID: 2},
	}

	tests := []struct {
		name      string
		posts     []models.PostDB
		readerErr error
		wantErr   error
	}{
		{
			name:  "returns matching posts",
			posts: posts,
		},
		{
			name:    "empty result reads as not found",
			posts:   nil,
			wantErr: services.ErrPostNotFound,
		},
		{
			name:      "reader error",
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader := services.NewMockPostReader(ctrl)
			mockWriter := services.NewMockPostWriter(ctrl)
			svc := services.NewPostService(mockReader, mockWriter)

			filter := models.PostFilter{Limit: 10}
			mockReader.EXPECT().
				List(gomock.Any(), int64(1), filter).
				Return(tt.posts, tt.readerErr)

			got, err := svc.List(context.Background(), 1, filter)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.posts, got)
		})
	}
}

func TestPostService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	tests := []struct {
		name      string
		viewerID  int64
		post      *models.PostDB
		readerErr error
		wantErr   error
	}{
		{
			name:     "public post of another user",
			viewerID: 2,
			post:     &models.PostDB{ID: 1, OwnerID: 1, Private: false},
		},
		{
			name:     "own private post",
			viewerID: 1,
			post:     &models.PostDB{ID: 1, OwnerID: 1, Private: true},
		},
		{
			name:     "private post of another user",
			viewerID: 2,
			post:     &models.PostDB{ID: 1, OwnerID: 1, Private: true},
			wantErr:  services.ErrPrivatePost,
		},
		{
			name:     "missing post",
			viewerID: 1,
			post:     nil,
			wantErr:  services.ErrPostNotFound,
		},
		{
			name:      "reader error",
			viewerID:  1,
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader := services.NewMockPostReader(ctrl)
			mockWriter := services.NewMockPostWriter(ctrl)
			svc := services.NewPostService(mockReader, mockWriter)

			mockReader.EXPECT().
				GetByID(gomock.Any(), int64(1)).
				Return(tt.post, tt.readerErr)

			got, err := svc.Get(context.Background(), tt.viewerID, 1)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.post, got)
		})
	}
}

func TestPostService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockPostReader(ctrl)
	mockWriter := services.NewMockPostWriter(ctrl)
	svc := services.NewPostService(mockReader, mockWriter)

	created := &models.PostDB{ID: 5, Title: "5k", Content: "new PB", Private: false, OwnerID: 3}
	mockWriter.EXPECT().
		Save(gomock.Any(), int64(3), "5k", "new PB", false).
		Return(created, nil)

	got, err := svc.Create(context.Background(), 3, "5k", "new PB", false)
	assert.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestPostService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existing := &models.PostDB{ID: 1, Title: "old", OwnerID: 1}
	updated := &models.PostDB{ID: 1, Title: "new", OwnerID: 1}

	tests := []struct {
		name       string
		viewerID   int64
		existing   *models.PostDB
		updated    *models.PostDB
		callWriter bool
		wantErr    error
	}{
		{
			name:       "owner updates own post",
			viewerID:   1,
			existing:   existing,
			updated:    updated,
			callWriter: true,
		},
		{
			name:     "missing post",
			viewerID: 1,
			existing: nil,
			wantErr:  services.ErrPostNotFound,
		},
		{
			name:     "not the owner",
			viewerID: 2,
			existing: existing,
			wantErr:  services.ErrNotPostOwner,
		},
		{
			name:       "row vanished between read and write",
			viewerID:   1,
			existing:   existing,
			updated:    nil,
			callWriter: true,
			wantErr:    services.ErrPostNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader := services.NewMockPostReader(ctrl)
			mockWriter := services.NewMockPostWriter(ctrl)
			svc := services.NewPostService(mockReader, mockWriter)

			mockReader.EXPECT().
				GetByID(gomock.Any(), int64(1)).
				Return(tt.existing, nil)
			if tt.callWriter {
				mockWriter.EXPECT().
					Update(gomock.Any(), int64(1), "new", "body", true).
					Return(tt.updated, nil)
			}

			got, err := svc.Update(context.Background(), tt.viewerID, 1, "new", "body", true)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.updated, got)
		})
	}
}

func TestPostService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	existing := &models.PostDB{ID: 1, OwnerID: 1}

	tests := []struct {
		name       string
		viewerID   int64
		existing   *models.PostDB
		affected   int64
		callWriter bool
		wantErr    error
	}{
		{
			name:       "owner deletes own post",
			viewerID:   1,
			existing:   existing,
			affected:   1,
			callWriter: true,
		},
		{
			name:     "missing post",
			viewerID: 1,
			existing: nil,
			wantErr:  services.ErrPostNotFound,
		},
		{
			name:     "not the owner",
			viewerID: 2,
			existing: existing,
			wantErr:  services.ErrNotPostOwner,
		},
		{
			name:       "row vanished between read and write",
			viewerID:   1,
			existing:   existing,
			affected:   0,
			callWriter: true,
			wantErr:    services.ErrPostNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader := services.NewMockPostReader(ctrl)
			mockWriter := services.NewMockPostWriter(ctrl)
			svc := services.NewPostService(mockReader, mockWriter)

			mockReader.EXPECT().
				GetByID(gomock.Any(), int64(1)).
				Return(tt.existing, nil)
			if tt.callWriter {
				mockWriter.EXPECT().
					Delete(gomock.Any(), int64(1)).
					Return(tt.affected, nil)
			}

			err := svc.Delete(context.Background(), tt.viewerID, 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
