package services

import (
	"context"
	"errors"

	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/models"
)

// ErrUserNotFound is returned when no user row matches the requested id.
var ErrUserNotFound = errors.New("user not found")

// UserCache defines the cache operations for user rows.
type UserCache interface {
	Get(ctx context.Context, id int64) (*models.UserDB, error)
	Set(ctx context.Context, user *models.UserDB) error
}

// UserService serves user lookups through a read-through cache.
type UserService struct {
	reader UserReader
	cache  UserCache
}

// NewUserService creates a new UserService instance. The cache may be nil.
func NewUserService(reader UserReader, cache UserCache) *UserService {
	return &UserService{
		reader: reader,
		cache:  cache,
	}
}

// GetByID resolves a user by id, preferring the cache. Cache failures fall
// back to the store rather than failing the lookup.
func (svc *UserService) GetByID(ctx context.Context, id int64) (*models.UserDB, error) {
	if svc.cache != nil {
		user, err := svc.cache.Get(ctx, id)
		if err != nil {
			logger.Log.Warnw("user cache read failed", "user_id", id, "err", err)
		}
		if user != nil {
			return user, nil
		}
	}

	user, err := svc.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get user", "user_id", id, "err", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if svc.cache != nil {
		if err := svc.cache.Set(ctx, user); err != nil {
			logger.Log.Warnw("user cache write failed", "user_id", id, "err", err)
		}
	}

	return user, nil
}
