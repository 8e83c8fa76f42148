package store

// untagged hides the TagStore capability of the wrapped store. The embedded
// Store interface carries no Tags method, so a type assertion against
// TagStore fails on the wrapper even when the underlying store supports it.
type untagged struct {
	Store
}

// WithoutTags returns a view of s with the [TagStore] capability stripped,
// even if the underlying store implements it. Useful for forcing the
// tracked-mode fallback — in tests, or to get uniform invalidation behavior
// across mixed backends.
func WithoutTags(s Store) Store {
	return untagged{Store: s}
}
