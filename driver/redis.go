package driver

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"

	"duocache/cacheerr"
)

// RedisDriver is a Redis-backed Driver, typically used as the L2 tier
// shared across process instances. It wraps a *redis.Client the same way
// the teacher's RedisClient wraps one, but exposes the Driver contract
// instead of ad hoc Set/Get/HSet helpers.
type RedisDriver struct {
	client *redis.Client
}

// NewRedisDriver wraps an already-configured *redis.Client. Connection
// lifecycle (dial timeout, pool size, auth) is the caller's concern,
// mirroring the teacher's NewRedisClient constructor.
func NewRedisDriver(client *redis.Client) *RedisDriver {
	return &RedisDriver{client: client}
}

func (d *RedisDriver) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := d.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, cacheerr.New(cacheerr.KindDriverError, key, "driver.RedisDriver.Get", err)
	}
	return value, true, nil
}

// Pull uses GETDEL so get-and-remove is a single round trip and atomic
// against concurrent writers.
func (d *RedisDriver) Pull(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := d.client.GetDel(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, cacheerr.New(cacheerr.KindDriverError, key, "driver.RedisDriver.Pull", err)
	}
	return value, true, nil
}

func (d *RedisDriver) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := d.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return cacheerr.New(cacheerr.KindDriverError, key, "driver.RedisDriver.Set", err)
	}
	return nil
}

func (d *RedisDriver) Has(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, key).Result()
	if err != nil {
		return false, cacheerr.New(cacheerr.KindDriverError, key, "driver.RedisDriver.Has", err)
	}
	return n > 0, nil
}

func (d *RedisDriver) Delete(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Del(ctx, key).Result()
	if err != nil {
		return false, cacheerr.New(cacheerr.KindDriverError, key, "driver.RedisDriver.Delete", err)
	}
	return n > 0, nil
}

func (d *RedisDriver) DeleteMany(ctx context.Context, keys []string) (bool, error) {
	if len(keys) == 0 {
		return false, nil
	}
	n, err := d.client.Del(ctx, keys...).Result()
	if err != nil {
		return false, cacheerr.New(cacheerr.KindDriverError, "", "driver.RedisDriver.DeleteMany", err)
	}
	return n > 0, nil
}

// Clear flushes the whole selected database. There is no prefix-scoped
// flush in the Redis command set short of a SCAN+DEL sweep, and a
// namespaced view is expected to reach for DeleteMany with known keys
// instead of Clear when it only wants to drop its own slice.
func (d *RedisDriver) Clear(ctx context.Context) error {
	if err := d.client.FlushDB(ctx).Err(); err != nil {
		return cacheerr.New(cacheerr.KindDriverError, "", "driver.RedisDriver.Clear", err)
	}
	return nil
}

func (d *RedisDriver) Disconnect(_ context.Context) error {
	if err := d.client.Close(); err != nil {
		return cacheerr.New(cacheerr.KindDriverError, "", "driver.RedisDriver.Disconnect", err)
	}
	return nil
}

func (d *RedisDriver) Namespace(prefix string) Driver {
	return &namespaced{prefix: prefix, inner: d}
}
