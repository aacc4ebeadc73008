// Package kv is the local persistent storage used by the cart and session
// stores. Values are opaque byte slices; callers own the encoding.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("kv: not found")

// Store is a string-keyed byte store. Writes are synchronous: when Set
// returns nil the value survives a restart of the process.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Options selects and configures a backend.
type Options struct {
	Driver        string // file | redis | memory
	Path          string
	RedisAddr     string
	RedisPassword string
	TTL           time.Duration
}

// Open returns the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "file":
		return OpenFile(opts.Path)
	case "redis":
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.TTL)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", opts.Driver)
	}
}
