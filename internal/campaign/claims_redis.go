package campaign

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClaimer implements Claimer with SET NX keys, so harness ownership
// holds across multiple service replicas sharing one Redis. Claims expire
// after a TTL in case an executor dies mid-chunk; the harness is then
// re-runnable, and the ledger's append-only records keep the retry honest.
type RedisClaimer struct {
	client *redis.Client
	ttl    time.Duration
}

const claimPrefix = "veriseq:claim:"

func NewRedisClaimer(client *redis.Client, ttl time.Duration) *RedisClaimer {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisClaimer{client: client, ttl: ttl}
}

func (c *RedisClaimer) TryClaim(ctx context.Context, harness string) (bool, error) {
	ok, err := c.client.SetNX(ctx, claimPrefix+harness, 1, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim harness %q: %w", harness, err)
	}
	return ok, nil
}

func (c *RedisClaimer) Release(ctx context.Context, harness string) error {
	if err := c.client.Del(ctx, claimPrefix+harness).Err(); err != nil {
		return fmt.Errorf("release harness %q: %w", harness, err)
	}
	return nil
}
