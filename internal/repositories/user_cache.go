package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/fit-tracker/internal/logger"
	"github.com/sbilibin2017/fit-tracker/internal/models"
)

// UserCacheRepository provides a Redis cache of user rows keyed by id.
// Users are immutable after registration, so cached rows only go stale
// when a user is deleted, which the TTL bounds.
type UserCacheRepository struct {
	client *redis.Client
	exp    time.Duration
}

// NewUserCacheRepository creates a new repository instance with the given TTL.
func NewUserCacheRepository(client *redis.Client, expiration time.Duration) *UserCacheRepository {
	return &UserCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func userCacheKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Get fetches a cached user row. A cache miss returns (nil, nil).
func (r *UserCacheRepository) Get(ctx context.Context, id int64) (*models.UserDB, error) {
	key := userCacheKey(id)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"error", err,
		)
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var user models.UserDB
	if err := json.Unmarshal([]byte(val), &user); err != nil {
		logger.Log.Errorw("corrupt cache entry", "key", key, "error", err)
		return nil, err
	}

	logger.Log.Infow(
		"key", key,
		"result", user.ID,
		"error", nil,
	)

	return &user, nil
}

// Set caches a user row with the configured expiration.
func (r *UserCacheRepository) Set(ctx context.Context, user *models.UserDB) error {
	key := userCacheKey(user.ID)

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}
