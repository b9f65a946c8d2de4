package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMiss = errors.New("cache miss")
)

// Store is a byte cache with per-key expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Locker hands out exclusive, expiring locks. TryLock never waits: ok is false
// when another holder owns the key.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}
