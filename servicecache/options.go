package servicecache

import (
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Option configures a Cache at construction.
type Option func(*Cache)

// WithLogger sets the logger used for debug events. Defaults to a no-op
// logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// WithDefaultDuration sets the TTL applied when a call does not specify one.
// Defaults to DefaultDuration (600 seconds).
func WithDefaultDuration(d time.Duration) Option {
	return func(c *Cache) { c.defaultDuration = d }
}

// callOptions holds the normalized per-call options. Not persisted —
// recomputed on every call.
type callOptions struct {
	uniqueToUser bool
	duration     time.Duration
	durationSet  bool
	params       url.Values
}

// CallOption configures a single Get call.
type CallOption func(*callOptions)

// UniqueToUser scopes the cache entry to the current caller by folding the
// caller identity into the fingerprint. If no caller can be resolved the
// call proceeds without a user component rather than failing.
func UniqueToUser() CallOption {
	return func(o *callOptions) { o.uniqueToUser = true }
}

// WithDuration sets the retention for the cached value. A duration of 0
// explicitly requests permanent caching, not "cache for zero seconds";
// positive durations are passed through to the store's TTL unchanged.
func WithDuration(d time.Duration) CallOption {
	return func(o *callOptions) {
		o.duration = d
		o.durationSet = true
	}
}

// Forever requests permanent retention until the group is explicitly
// cleared. Equivalent to WithDuration(0).
func Forever() CallOption {
	return WithDuration(0)
}

// WithParams adds extra key/value pairs to the fingerprint input. On key
// collision with the request query parameters, these win.
func WithParams(params url.Values) CallOption {
	return func(o *callOptions) {
		if o.params == nil {
			o.params = url.Values{}
		}
		for k, vs := range params {
			o.params[k] = vs
		}
	}
}

// WithParam adds a single extra key/value pair to the fingerprint input.
func WithParam(key, value string) CallOption {
	return func(o *callOptions) {
		if o.params == nil {
			o.params = url.Values{}
		}
		o.params.Set(key, value)
	}
}

func newCallOptions(defaultDuration time.Duration, opts []CallOption) callOptions {
	o := callOptions{duration: defaultDuration}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ttl resolves the effective store TTL: 0 means permanent retention.
func (o callOptions) ttl() time.Duration {
	if o.durationSet && o.duration <= 0 {
		return 0
	}
	return o.duration
}
