package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// AwardGuard enforces at-most-once point awards per logical event, backed
// by Redis SETNX. Keys never expire: a favorite toggled off and on again a
// month later must still not re-award.
type AwardGuard struct {
	client *redis.Client
}

// NewAwardGuard creates an AwardGuard wrapping the given Redis client.
func NewAwardGuard(client *redis.Client) *AwardGuard {
	return &AwardGuard{client: client}
}

// Acquire claims the event key. Only the first claimant receives true.
func (g *AwardGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(key), "1", 0).Result()
	if err != nil {
		return false, fmt.Errorf("award guard acquire: %w", err)
	}
	return ok, nil
}

// Release returns a claimed key after a failed award write so the event
// can be retried.
func (g *AwardGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, g.key(key)).Err()
}

func (g *AwardGuard) key(key string) string {
	return "award:" + key
}
