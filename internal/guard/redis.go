package guard

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const redisKeyPrefix = "fuelapi:upload:"

// Redis shares the duplicate window across replicas. Keys expire after two
// windows so no explicit clearing is needed.
type Redis struct {
	rdb    redis.Cmdable
	window time.Duration
}

var _ Guard = (*Redis)(nil)

// NewRedis returns a guard backed by rdb.
func NewRedis(rdb redis.Cmdable, window time.Duration) *Redis {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Redis{rdb: rdb, window: window}
}

func (r *Redis) Key(userID string, size int64, now time.Time) string {
	return Key(userID, size, now, r.window)
}

func (r *Redis) ttl() time.Duration { return 2 * r.window }

func (r *Redis) ShouldReject(ctx context.Context, key string) (bool, error) {
	n, err := r.rdb.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, eris.Wrap(err, "guard: exists")
	}
	return n > 0, nil
}

func (r *Redis) Record(ctx context.Context, key string) error {
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, 1, r.ttl()).Err(); err != nil {
		return eris.Wrap(err, "guard: set")
	}
	return nil
}

func (r *Redis) Release(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return eris.Wrap(err, "guard: del")
	}
	return nil
}

func (r *Redis) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, redisKeyPrefix+key, 1, r.ttl()).Result()
	if err != nil {
		return false, eris.Wrap(err, "guard: setnx")
	}
	return ok, nil
}
