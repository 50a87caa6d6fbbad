package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sbilibin2017/fit-tracker/internal/models"
)

func TestUserCacheRepository(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer redisC.Terminate(ctx)

	host, err := redisC.Host(ctx)
	require.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	defer rdb.Close()

	err = rdb.Ping(ctx).Err()
	require.NoError(t, err)

	repo := NewUserCacheRepository(rdb, 2*time.Second)

	t.Run("SetAndGet", func(t *testing.T) {
		user := &models.UserDB{
			ID:           1,
			Username:     "alice",
			Email:        "alice@example.com",
			PasswordHash: "$2a$10$hash",
			CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		}

		err := repo.Set(ctx, user)
		assert.NoError(t, err)

		got, err := repo.Get(ctx, 1)
		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("PasswordHashNeverCached", func(t *testing.T) {
		raw, err := rdb.Get(ctx, "user:1").Result()
		assert.NoError(t, err)
		assert.NotContains(t, raw, "$2a$10$hash")

		got, err := repo.Get(ctx, 1)
		assert.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.PasswordHash)
	})

	t.Run("MissReturnsNil", func(t *testing.T) {
		got, err := repo.Get(ctx, 999)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("EntryExpires", func(t *testing.T) {
		user := &models.UserDB{ID: 2, Username: "bob", Email: "bob@example.com"}
		err := repo.Set(ctx, user)
		require.NoError(t, err)

		time.Sleep(3 * time.Second)

		got, err := repo.Get(ctx, 2)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}
