package storage

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/kataras/golog"
)

// TokenStore remembers issued refresh tokens so each one can be used once.
type TokenStore interface {
	Put(ctx context.Context, token string, ttl time.Duration) error
	// Consume reports whether token was live and removes it.
	Consume(ctx context.Context, token string) (bool, error)
}

type RedisTokenStore struct {
	client *redis.Client
}

func InitializeRedis(redisURL string) (*RedisTokenStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		// Plain host:port, as in local development.
		opts = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	golog.Infof("redis initialized with address: %s", opts.Addr)
	return &RedisTokenStore{client: client}, nil
}

func (s *RedisTokenStore) Put(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, token, "true", ttl).Err()
}

func (s *RedisTokenStore) Consume(ctx context.Context, token string) (bool, error) {
	// DEL is atomic, so only one caller sees a removed key.
	removed, err := s.client.Del(ctx, token).Result()
	if err != nil {
		return false, err
	}

	return removed == 1, nil
}

func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}

// MemoryTokenStore is used when no Redis is configured.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	now    func() time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		tokens: make(map[string]time.Time),
		now:    time.Now,
	}
}

func (s *MemoryTokenStore) Put(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[token] = s.now().Add(ttl)
	return nil
}

func (s *MemoryTokenStore) Consume(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, exists := s.tokens[token]
	if !exists {
		return false, nil
	}

	delete(s.tokens, token)
	return s.now().Before(expiresAt), nil
}
