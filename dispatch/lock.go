package dispatch

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOfferLock marks a collector as having an offer in flight with a
// SET NX key. The TTL is a backstop against a crashed run leaving a
// collector locked forever; normal runs release explicitly.
type RedisOfferLock struct {
	Client *redis.Client
}

func (l RedisOfferLock) Acquire(ctx context.Context, collectorID string, ttl time.Duration) (func(), bool, error) {
	key := "offer:" + collectorID
	ok, err := l.Client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		l.Client.Del(context.Background(), key)
	}
	return release, true, nil
}
