package store

import (
	"context"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Forever is the TTL value that marks an entry as permanently retained.
// Any ttl <= 0 passed to Set or Remember means "never expire".
const Forever time.Duration = 0

// DefaultQueryTimeout is the per-operation timeout for store backends that
// perform I/O (SQLite, Redis). Prevents indefinite hangs on slow or
// unresponsive storage.
const DefaultQueryTimeout = 5 * time.Second

// ComputeFunc produces a value to be cached when a Remember call misses.
type ComputeFunc func(ctx context.Context) (any, error)

// Store is the key/value storage collaborator. All methods are context-first
// and safe for concurrent use.
//
// Values are stored as-is by in-process backends and serialized to msgpack
// by I/O-backed backends; callers that need a typed value back should use
// the [As] helper, which handles both representations.
type Store interface {
	// Get retrieves a value. The first return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) (bool, any, error)

	// Set stores a value. A ttl <= 0 ([Forever]) stores it without expiry.
	Set(ctx context.Context, key string, val any, ttl time.Duration) error

	// Has reports whether the key is present and unexpired.
	Has(ctx context.Context, key string) (bool, error)

	// Forget removes a key. Returns whether a key was actually removed;
	// forgetting an absent key is not an error.
	Forget(ctx context.Context, key string) (bool, error)

	// DeleteMany removes all of the given keys. Absent keys are skipped.
	DeleteMany(ctx context.Context, keys []string) error

	// Remember returns the value under key if present and unexpired;
	// otherwise it invokes compute, stores the result with the given ttl,
	// and returns it. Remember does not guard against concurrent misses
	// racing on the same key — single-flight, if any, is the backend's own
	// guarantee.
	Remember(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (any, error)

	// Close shuts down the store.
	Close() error
}

// Scoped is the view of a store restricted to a single tag. Entries written
// through a Scoped view are flushed together by Flush.
type Scoped interface {
	Remember(ctx context.Context, key string, ttl time.Duration, compute ComputeFunc) (any, error)
	// Flush removes every entry ever written under this tag.
	Flush(ctx context.Context) (bool, error)
}

// TagStore is the optional capability interface for backends with native
// tag-scoped storage. Backends opt in by implementing Tags; callers detect
// the capability with a type assertion.
type TagStore interface {
	Tags(tag string) Scoped
}

// As converts a raw store value to T. In-process backends hand back the
// original value, which is type-asserted directly; serialized backends hand
// back []byte, which is decoded from msgpack.
func As[T any](val any) (T, error) {
	if typed, ok := val.(T); ok {
		return typed, nil
	}
	if data, ok := val.([]byte); ok {
		var result T
		if err := msgpack.Unmarshal(data, &result); err != nil {
			var zero T
			return zero, fmt.Errorf("store: failed to unmarshal value: %w", err)
		}
		return result, nil
	}
	var zero T
	return zero, fmt.Errorf("store: cannot convert value of type %T to %T", val, zero)
}

// config holds the resolved configuration for a store implementation.
type config struct {
	queryTimeout time.Duration
	expiryCheck  time.Duration
	prefix       string
}

// Option configures a Store implementation.
type Option func(*config)

func defaultConfig() config {
	return config{
		queryTimeout: DefaultQueryTimeout,
		expiryCheck:  time.Minute,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed stores
// (SQLite, Redis). Defaults to DefaultQueryTimeout (5 seconds).
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithExpiryCheck sets the interval for background expired entry cleanup.
// Applies to the Memory and SQLite backends. Defaults to 1 minute.
func WithExpiryCheck(d time.Duration) Option {
	return func(c *config) { c.expiryCheck = d }
}

// WithPrefix sets the key prefix for namespacing keys. Applies to the Redis
// backend. Defaults to empty (no prefix).
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}
