package shigure

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// HitCounter tracks how often each post was viewed. The count is shown as the
// post's popularity.
type HitCounter interface {
	Increment(ctx context.Context, number int) (int64, error)
	Get(ctx context.Context, number int) (int64, error)
}

// SQLiteHits counts views in the Store's hits table.
type SQLiteHits struct {
	Store *Store
}

func (h SQLiteHits) Increment(_ context.Context, number int) (int64, error) {
	return h.Store.IncrementHits(number)
}

func (h SQLiteHits) Get(_ context.Context, number int) (int64, error) {
	return h.Store.Hits(number)
}

// RedisHits counts views with INCR on one key per post.
type RedisHits struct {
	Client *redis.Client
	Prefix string
}

// NewRedisHits connects to the server described by a redis:// URL.
func NewRedisHits(url string) (*RedisHits, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisHits{Client: redis.NewClient(opt), Prefix: "shigure:hits:"}, nil
}

func (h *RedisHits) key(number int) string {
	return h.Prefix + strconv.Itoa(number)
}

func (h *RedisHits) Increment(ctx context.Context, number int) (int64, error) {
	return h.Client.Incr(ctx, h.key(number)).Result()
}

func (h *RedisHits) Get(ctx context.Context, number int) (int64, error) {
	n, err := h.Client.Get(ctx, h.key(number)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Close closes the redis connection pool.
func (h *RedisHits) Close() error {
	return h.Client.Close()
}
