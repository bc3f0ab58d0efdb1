// Package guard rejects repeated receipt uploads that arrive within a short
// window. A submission is identified by its owner, its byte size and the
// window bucket it falls in.
package guard

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"fuelapi/internal/config"
)

// DefaultWindow is the bucket width used when none is configured.
const DefaultWindow = 10 * time.Second

// Guard tracks recently seen submission keys. Implementations must be safe
// for concurrent use. The upload handler uses Claim, the atomic form of
// ShouldReject followed by Record, and Release on failure.
type Guard interface {
	// Key derives the submission key for userID uploading size bytes at now.
	Key(userID string, size int64, now time.Time) string
	// ShouldReject reports whether key is currently tracked.
	ShouldReject(ctx context.Context, key string) (bool, error)
	// Record tracks key.
	Record(ctx context.Context, key string) error
	// Release forgets key so a retry of a failed submission is accepted.
	Release(ctx context.Context, key string) error
	// Claim records key and reports whether it was previously untracked, in
	// one step.
	Claim(ctx context.Context, key string) (bool, error)
}

// Key formats userID_size_bucket, where bucket is now in milliseconds
// divided by the window length.
func Key(userID string, size int64, now time.Time, window time.Duration) string {
	if window <= 0 {
		window = DefaultWindow
	}
	bucket := now.UnixMilli() / window.Milliseconds()
	return userID + "_" + strconv.FormatInt(size, 10) + "_" + strconv.FormatInt(bucket, 10)
}

// New builds the guard selected by cfg. rdb is only used by the redis driver.
func New(cfg config.GuardConfig, rdb *redis.Client) (Guard, error) {
	switch cfg.Driver {
	case config.GuardDriverMemory, "":
		return NewMemory(cfg.Window, cfg.MaxEntries), nil
	case config.GuardDriverRedis:
		if rdb == nil {
			return nil, eris.New("guard: redis driver selected without a redis client")
		}
		return NewRedis(rdb, cfg.Window), nil
	default:
		return nil, eris.Errorf("guard: unknown driver %q", cfg.Driver)
	}
}
