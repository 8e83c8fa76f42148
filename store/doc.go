// Package store defines the key/value storage collaborator consumed by the
// servicecache package, along with three backend implementations.
//
// The [Store] interface covers the flat primitives: Get, Set, Has, Forget,
// DeleteMany, and the compute-if-absent Remember. Backends with native
// tag-scoped storage additionally implement [TagStore]; callers detect that
// capability with a plain type assertion, and [WithoutTags] strips it when
// uniform fallback behavior is wanted.
//
// Backends:
//
//   - [NewMemory] — in-process map guarded by a mutex, tag-capable. Values
//     are stored as-is with zero serialization overhead. Expired entries are
//     swept by a background goroutine.
//
//   - [NewRedis] — Redis via github.com/redis/go-redis/v9, msgpack-encoded
//     values, native TTL expiry. Not tag-capable.
//
//   - [NewSQLite] — SQLite via modernc.org/sqlite (pure Go), msgpack BLOBs,
//     WAL mode. Not tag-capable.
//
// Serialized backends hand values back as []byte; [As] converts a raw value
// to a concrete type regardless of which backend produced it.
package store
