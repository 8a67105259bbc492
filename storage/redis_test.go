package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenStore(t *testing.T, store TokenStore) {
	ctx := context.Background()
	token := "token-" + uuid.New().String()

	require.NoError(t, store.Put(ctx, token, time.Minute))

	ok, err := store.Consume(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Consume(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok, "refresh tokens are single use")

	ok, err = store.Consume(ctx, "never-issued")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryTokenStore(t *testing.T) {
	testTokenStore(t, NewMemoryTokenStore())
}

func TestMemoryTokenStoreExpiry(t *testing.T) {
	store := NewMemoryTokenStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Put(context.Background(), "t", time.Minute))
	now = now.Add(2 * time.Minute)

	ok, err := store.Consume(context.Background(), "t")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisTokenStore(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("Skipping test: TEST_REDIS_URL not set")
	}

	store, err := InitializeRedis(redisURL)
	if err != nil {
		t.Skipf("Skipping test: cannot connect to redis: %v", err)
	}
	defer store.Close()

	testTokenStore(t, store)
}
