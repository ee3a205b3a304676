package sequence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "booking:seq"
	defaultTTL    = 72 * time.Hour
)

// Counter дневной счётчик номеров бронирований на Redis INCR
//
// Ключ <prefix>:<YYYYMMDD> один раз за день засевается через SETNX максимальным
// номером из БД, дальше каждый вызов делает INCR. Ключ живёт ttl и удаляется сам.
// Счётчик не участвует в транзакции БД: откат бронирования оставляет пропуск в нумерации.
type Counter struct {
	rdb    *redis.Client
	seeder Seeder
	prefix string
	ttl    time.Duration
}

type Option func(*Counter)

func WithPrefix(prefix string) Option {
	return func(c *Counter) {
		c.prefix = strings.Trim(prefix, ":")
	}
}

func WithTTL(d time.Duration) Option {
	return func(c *Counter) { c.ttl = d }
}

// NewCounter создает счётчик. seeder может быть nil, тогда счёт начинается с 1
func NewCounter(rdb *redis.Client, seeder Seeder, opts ...Option) *Counter {
	c := &Counter{
		rdb:    rdb,
		seeder: seeder,
		prefix: defaultPrefix,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Next выдаёт следующий порядковый номер за день (day в формате YYYYMMDD)
func (c *Counter) Next(ctx context.Context, day string) (int, error) {
	key := c.key(day)

	if err := c.ensureSeeded(ctx, key, day); err != nil {
		return 0, err
	}

	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: Next - incr %s: %v", ErrRedis, key, err)
	}

	return int(incr.Val()), nil
}

func (c *Counter) ensureSeeded(ctx context.Context, key, day string) error {
	exists, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: ensureSeeded - exists %s: %v", ErrRedis, key, err)
	}
	if exists > 0 {
		return nil
	}

	seed := 0
	if c.seeder != nil {
		seed, err = c.seeder.MaxSequence(ctx, day)
		if err != nil {
			return fmt.Errorf("%w: day %s: %v", ErrSeed, day, err)
		}
	}

	// Параллельный вызов мог засеять ключ раньше: SETNX тогда ничего не меняет
	if err := c.rdb.SetNX(ctx, key, seed, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: ensureSeeded - setnx %s: %v", ErrRedis, key, err)
	}

	return nil
}

func (c *Counter) key(day string) string {
	return c.prefix + ":" + day
}
