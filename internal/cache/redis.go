package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-matchmaking-backend/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// RemoteTier is the cross-instance cache store. Implementations must be
// safe for concurrent use across keys.
type RemoteTier interface {
	Get(ctx context.Context, key string) (*domain.CacheEntry, bool, error)
	Set(ctx context.Context, key string, entry *domain.CacheEntry, ttl time.Duration) error
}

// redisTier stores JSON-encoded entries in Redis with a server-side TTL.
type redisTier struct {
	client *goredis.Client
}

func NewRedisTier(client *goredis.Client) RemoteTier {
	return &redisTier{client: client}
}

func (t *redisTier) Get(ctx context.Context, key string) (*domain.CacheEntry, bool, error) {
	raw, err := t.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt entry is treated as a miss; the recompute will overwrite it.
		return nil, false, err
	}
	return &entry, true, nil
}

func (t *redisTier) Set(ctx context.Context, key string, entry *domain.CacheEntry, ttl time.Duration) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return t.client.Set(ctx, key, raw, ttl).Err()
}
