package rdx

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

func RdxGet(key string) (string, error) {
	return Conn.Get(context.TODO(), key).Result()
}

// SetWithExpiry stores a value that disappears after ttl (OTPs, sessions).
func SetWithExpiry(key, value string, ttl time.Duration) error {
	return Conn.Set(context.TODO(), key, value, ttl).Err()
}

func RdxDel(key string) error {
	return Conn.Del(context.TODO(), key).Err()
}

// Publish pushes a payload onto a pub/sub channel, logging failures
// instead of surfacing them; event delivery is best-effort.
func Publish(ctx context.Context, channel string, payload []byte) {
	if err := Conn.Publish(ctx, channel, payload).Err(); err != nil {
		log.Printf("Redis publish to %s failed: %v", channel, err)
	}
}
