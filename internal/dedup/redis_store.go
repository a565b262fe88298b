package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore claims transaction ids with SETNX. Entries expire after ttl
// instead of being counted and evicted; Len reports the live key count.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RedisStore{
		client: client,
		prefix: "lklpay:trans",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(transID string) string {
	return s.prefix + ":" + transID
}

func (s *RedisStore) Claim(ctx context.Context, transID string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(transID), "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => key existed => duplicate
	return !ok, nil
}

func (s *RedisStore) Release(ctx context.Context, transID string) error {
	return s.client.Del(ctx, s.key(transID)).Err()
}

func (s *RedisStore) Len(ctx context.Context) (int64, error) {
	var (
		cursor uint64
		total  int64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", 1000).Result()
		if err != nil {
			return 0, err
		}
		total += int64(len(keys))
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// NewRedisClient dials Redis and verifies the connection. Callers fall back
// to another store when this fails.
func NewRedisClient(addr, pass string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
