// Package servicecache memoizes the results of service operations, keyed by
// a deterministic fingerprint of the calling context, with per-service group
// invalidation that works the same whether or not the backing store supports
// native tag-scoped eviction.
//
// # Fingerprints and groups
//
// Every [Get] call derives an opaque, fixed-length cache key from the
// service identity (the canonical Go type name, see [Identity]), the
// operation name, the request path, the merged and sorted parameter set, and
// optionally the caller identity. Identical logical inputs always produce
// the identical key regardless of map iteration order; changing any single
// component changes the key. Keys carry a fixed "service-cache:" namespace
// so they cannot collide with unrelated keys in a shared store.
//
// All entries written for one service share a group identifier ([GroupTag]),
// which is the unit of invalidation: [Cache.Clear] removes a whole group.
//
// # Tagged and tracked modes
//
// Whether the store supports tag scoping is detected once, at construction,
// by asserting the store against [store.TagStore]. Tag-capable stores
// (memory) get native tag scoping: remember calls go through the store's
// tag view and Clear is the store's own flush-by-tag. Everything else
// (redis, sqlite) falls back to tracked mode: the package maintains a
// per-group index of every fingerprint written, stored alongside the cached
// values, and Clear drains that index and bulk-deletes the recorded keys.
// All caching semantics are identical across the two modes.
//
// Tracked mode has two accepted, documented races: the tracking index
// read-modify-write is unguarded, so concurrent first-time writes to one
// group can drop a registration; and a Get racing a Clear can land an entry
// after the drain's delete pass, leaving it until the next clear cycle or
// TTL expiry. Neither affects tagged mode.
//
// # Remember semantics
//
// The caller passes a zero-argument computation already bound to its
// arguments; the (service, operation) pair is used purely as fingerprint and
// tag input. On a hit the stored value is returned and the computation is
// not invoked; on a miss it is invoked once, its result stored, and
// returned. A duration of 0 (or the [Forever] option) requests permanent
// retention — not a zero-second TTL — and positive durations pass through
// to the store unchanged. The package adds no locking: single-flight on
// concurrent misses is the store's guarantee to make, or not.
//
//	users := &UserService{...}
//	result, err := servicecache.Get(ctx, c, requestctx.FromHTTP(r, caller),
//	    users, "ListUsers",
//	    func(ctx context.Context) ([]User, error) { return users.List(ctx) },
//	    servicecache.UniqueToUser(),
//	    servicecache.WithDuration(10*time.Minute),
//	)
//
// # Caller scoping
//
// With [UniqueToUser], the caller identity is folded into the fingerprint
// under the reserved "user_id" parameter key, so distinct callers get
// independent entries. If no identity can be resolved the call degrades to
// an unscoped fingerprint rather than failing. A caller-supplied parameter
// named "user_id" silently merges with this reserved key; the collision is
// a known ambiguity and is deliberately not guarded against.
//
// # Errors
//
// [ErrInvalidOperation] is raised before any storage access when the
// computation is not invocable. Store errors are marked with
// [ErrStorageFailure] and propagated unchanged — never retried, never
// swallowed. Errors from the computation itself propagate as-is and nothing
// is cached.
package servicecache
