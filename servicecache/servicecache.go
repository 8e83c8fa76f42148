package servicecache

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/tidehook/servicecache/requestctx"
	"github.com/tidehook/servicecache/store"
)

// Operation is a zero-argument computation already bound to a specific
// service operation and its arguments. It is invoked at most once per cache
// miss by this package; concurrent misses racing on the same fingerprint may
// still both invoke it unless the store guarantees single-flight.
type Operation[T any] func(ctx context.Context) (T, error)

// Cache memoizes service operation results in a backing Store, keyed by a
// deterministic fingerprint of the calling context, with per-service group
// invalidation.
//
// Whether the store supports native tag-scoped storage is probed exactly
// once, at construction, by asserting against [store.TagStore]; the result
// is fixed for the Cache's lifetime. Tag-capable stores get native tag
// scoping and flush-by-tag; all other stores fall back to an
// application-maintained tracking index of emitted keys per group.
//
// A Cache holds no mutable state beyond that capability and is safe for
// concurrent use to the extent the store is.
type Cache struct {
	store           store.Store
	tags            store.TagStore // nil when the store has no tag capability
	track           trackingIndex
	defaultDuration time.Duration
	log             zerolog.Logger
}

// New builds a Cache on top of s.
func New(s store.Store, opts ...Option) *Cache {
	c := &Cache{
		store:           s,
		track:           trackingIndex{store: s},
		defaultDuration: DefaultDuration,
		log:             zerolog.Nop(),
	}
	if ts, ok := s.(store.TagStore); ok {
		c.tags = ts
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log.Debug().Bool("tagged", c.tags != nil).Msg("service cache initialized")
	return c
}

// Tagged reports whether the backing store's native tag capability is in
// use.
func (c *Cache) Tagged() bool {
	return c.tags != nil
}

// Close shuts down the backing store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// Get returns the cached result of the named operation for the current
// calling context, computing and storing it on a miss.
//
// service and operation identify the computation for fingerprint and group
// purposes only; the actual work is done by compute, which must already be
// bound to its arguments. A nil compute fails with [ErrInvalidOperation]
// before any storage access. req supplies the request path, query
// parameters, and caller identity; it may be nil for non-request contexts.
//
// The result is returned as-is — this package is agnostic to the
// operation's result shape. Storage errors are marked [ErrStorageFailure]
// and propagated; compute errors are propagated unchanged and nothing is
// cached.
func Get[T any](ctx context.Context, c *Cache, req *requestctx.Context, service any, operation string, compute Operation[T], opts ...CallOption) (T, error) {
	var zero T
	identity := Identity(service)
	if compute == nil {
		return zero, invalidOperation(operation, identity)
	}
	opt := newCallOptions(c.defaultDuration, opts)

	var path string
	var query url.Values
	var callerID string
	var hasCaller bool
	if req != nil {
		path = req.Path
		query = req.Query
		if opt.uniqueToUser && req.User != nil {
			// An unresolved identity degrades to an unscoped fingerprint.
			if id := req.User.Identifier(); id != nil {
				callerID = fmt.Sprint(id)
				hasCaller = true
			}
		}
	}

	key := fingerprint(identity, operation, path, query, opt.params, callerID, hasCaller)
	ttl := opt.ttl()

	var computeErr error
	fn := func(ctx context.Context) (any, error) {
		val, err := compute(ctx)
		if err != nil {
			computeErr = err
			return nil, err
		}
		return val, nil
	}

	var raw any
	var err error
	if c.tags != nil {
		raw, err = c.tags.Tags(GroupTag(service)).Remember(ctx, key, ttl, fn)
	} else {
		raw, err = c.trackedRemember(ctx, GroupTag(service), key, ttl, fn)
	}
	if err != nil {
		if computeErr != nil {
			return zero, computeErr
		}
		return zero, storageFailure(err)
	}

	result, err := store.As[T](raw)
	if err != nil {
		return zero, storageFailure(err)
	}
	return result, nil
}

// trackedRemember is the fallback remember protocol for stores without tag
// support. The fingerprint is registered in the tracking index on every
// call, hit or miss, so a later group clear can find it.
func (c *Cache) trackedRemember(ctx context.Context, groupTag, key string, ttl time.Duration, fn store.ComputeFunc) (any, error) {
	if err := c.track.add(ctx, groupTag, key); err != nil {
		return nil, err
	}
	if ttl > 0 {
		return c.store.Remember(ctx, key, ttl, fn)
	}
	// Permanent retention: no remember-forever primitive is assumed of
	// fallback stores, so check existence explicitly and compute only on
	// absence.
	found, err := c.store.Has(ctx, key)
	if err != nil {
		return nil, err
	}
	if found {
		ok, raw, err := c.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			return raw, nil
		}
		// Evicted between Has and Get; recompute below.
	}
	val, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, val, store.Forever); err != nil {
		return nil, err
	}
	return val, nil
}

// Clear removes every cache entry belonging to the given service's group.
// On tag-capable stores this is the store's own flush-by-tag; otherwise the
// tracking index is drained and the recorded fingerprints bulk-deleted.
// Clearing an already-empty group is not an error.
func (c *Cache) Clear(ctx context.Context, service any) (bool, error) {
	tag := GroupTag(service)
	if c.tags != nil {
		ok, err := c.tags.Tags(tag).Flush(ctx)
		if err != nil {
			return false, storageFailure(err)
		}
		c.log.Debug().Str("group", tag).Msg("flushed tagged group")
		return ok, nil
	}
	fps, err := c.track.drainAndClear(ctx, tag)
	if err != nil {
		return false, storageFailure(err)
	}
	if len(fps) > 0 {
		if err := c.store.DeleteMany(ctx, fps); err != nil {
			return false, storageFailure(err)
		}
	}
	c.log.Debug().Str("group", tag).Int("entries", len(fps)).Msg("cleared tracked group")
	return true, nil
}
