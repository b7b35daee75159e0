package revoke

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "revoked:"

// Redis backs the revocation set with a shared redis instance so revocations
// survive restarts and are visible across replicas. Entries carry a TTL equal
// to the longest token lifetime: once a token has expired naturally its
// revocation entry is dead weight, so redis may drop it.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ Store = (*Redis)(nil)

// NewRedis wraps an existing client. ttl bounds how long entries are kept and
// should be at least the refresh-token lifetime.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Redis{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    ttl,
	}
}

func (r *Redis) Revoke(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return nil
	}

	if err := r.client.Set(ctx, r.prefix+tokenID, "1", r.ttl).Err(); err != nil {
		return fmt.Errorf("revoke: redis set: %w", err)
	}
	return nil
}

func (r *Redis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("revoke: redis exists: %w", err)
	}
	return n > 0, nil
}
