package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"IdeaScanner/internal/config"
	"IdeaScanner/internal/ports"
)

const (
	keyPrefix         = "ideascanner:seen:"
	defaultTTL        = 30 * 24 * time.Hour
	connectionTimeout = 5 * time.Second
)

// ErrEmptyAddress is returned when Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

// NewClient creates a Redis client and verifies the connection.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// FingerprintStore remembers content fingerprints across runs.
type FingerprintStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ ports.FingerprintStore = (*FingerprintStore)(nil)

// NewFingerprintStore wraps a client; ttl <= 0 uses 30 days.
func NewFingerprintStore(client redis.UniversalClient, ttl time.Duration) *FingerprintStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &FingerprintStore{client: client, ttl: ttl}
}

// Seen reports whether the fingerprint was marked by an earlier run.
func (s *FingerprintStore) Seen(ctx context.Context, fp string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+fp).Result()
	if err != nil {
		return false, fmt.Errorf("check fingerprint %s: %w", fp, err)
	}
	return n > 0, nil
}

// Mark records the fingerprint and refreshes its expiry.
func (s *FingerprintStore) Mark(ctx context.Context, fp string) error {
	if err := s.client.Set(ctx, keyPrefix+fp, time.Now().UTC().Unix(), s.ttl).Err(); err != nil {
		return fmt.Errorf("mark fingerprint %s: %w", fp, err)
	}
	return nil
}
