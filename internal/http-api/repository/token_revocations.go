package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevocations remembers logged-out session token ids until they expire.
// Without a redis client nothing is remembered and nothing is revoked.
type TokenRevocations struct {
	client *redis.Client
}

func NewTokenRevocations(client *redis.Client) *TokenRevocations {
	return &TokenRevocations{client: client}
}

func revokedKey(tokenID string) string { return fmt.Sprintf("auth:revoked:%s", tokenID) }

// Revoke marks tokenID revoked until the token would have expired anyway.
func (r *TokenRevocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if r == nil || r.client == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w: %w", ErrUnavailable, err)
	}
	return nil
}

func (r *TokenRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r == nil || r.client == nil {
		return false, nil
	}
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w: %w", ErrUnavailable, err)
	}
	return n > 0, nil
}
