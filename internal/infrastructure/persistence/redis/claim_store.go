// Package redis provides a Redis-backed image claim store so that several
// discovery processes can share one dedup cache.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/alchemorsel/discovery/internal/infrastructure/config"
	"github.com/alchemorsel/discovery/internal/ports/outbound"
	apperrors "github.com/alchemorsel/discovery/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ClaimStore keeps claims in a single Redis hash: field = URL, value = recipe id
type ClaimStore struct {
	client redis.UniversalClient
	key    string
	logger *zap.Logger
}

var _ outbound.ClaimStore = (*ClaimStore)(nil)

// NewClient creates a Redis client from configuration
func NewClient(cfg config.RedisConfig) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Addr()},
		Password:     cfg.Password,
		DB:           cfg.Database,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolSize:     cfg.PoolSize,
	})
}

// NewClaimStore creates a claim store under keyPrefix
func NewClaimStore(client redis.UniversalClient, keyPrefix string, logger *zap.Logger) *ClaimStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimStore{
		client: client,
		key:    fmt.Sprintf("%s:claims", keyPrefix),
		logger: logger.Named("redis-claims"),
	}
}

// Claim assigns url to recipeID unless already owned
func (s *ClaimStore) Claim(ctx context.Context, url, recipeID string) (string, error) {
	set, err := s.client.HSetNX(ctx, s.key, url, recipeID).Result()
	if err != nil {
		s.logger.Error("Claim failed", zap.String("url", url), zap.Error(err))
		return "", apperrors.NewClaimStoreError("claim image", err)
	}
	if set {
		return recipeID, nil
	}

	owner, err := s.client.HGet(ctx, s.key, url).Result()
	if err != nil {
		return "", apperrors.NewClaimStoreError("read image owner", err)
	}
	return owner, nil
}

// Owner returns the recipe owning url
func (s *ClaimStore) Owner(ctx context.Context, url string) (string, bool, error) {
	owner, err := s.client.HGet(ctx, s.key, url).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Debug("Owner lookup failed", zap.String("url", url), zap.Error(err))
		return "", false, apperrors.NewClaimStoreError("read image owner", err)
	}
	return owner, true, nil
}

// Count returns the number of claimed URLs
func (s *ClaimStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.HLen(ctx, s.key).Result()
	if err != nil {
		return 0, apperrors.NewClaimStoreError("count claims", err)
	}
	return int(n), nil
}

// Reset forgets every claim
func (s *ClaimStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return apperrors.NewClaimStoreError("reset claims", err)
	}
	return nil
}

// Ping verifies connectivity
func (s *ClaimStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
