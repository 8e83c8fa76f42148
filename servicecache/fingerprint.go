package servicecache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// keyNamespace prefixes every fingerprint so cached entries cannot collide
// with unrelated keys in a shared store.
const keyNamespace = "service-cache:"

// userIDParam is the reserved parameter key under which the caller identity
// is folded into the fingerprint. A caller-supplied parameter of the same
// name silently merges with it; see the package documentation.
const userIDParam = "user_id"

// Identity returns the stable identity of a service: its canonical Go type
// name, package-qualified. Identical types always yield the same identity
// and distinct types never collide.
func Identity(service any) string {
	return fmt.Sprintf("%T", service)
}

// GroupTag returns the group identifier shared by every cache entry written
// for the given service. It is used verbatim as the native tag name on
// tag-capable stores and as part of the tracking-index key name otherwise,
// so both invalidation modes key off the same grouping.
func GroupTag(service any) string {
	sum := xxhash.Sum64String(Identity(service))
	return fmt.Sprintf("%016x", sum)
}

// fingerprint derives the deterministic cache key for one operation call.
// Query and extra parameters are merged (extras win on collision), the
// caller id is folded in under the reserved user_id key, and the merged set
// is serialized in sorted, percent-encoded form so the result is independent
// of map iteration order.
func fingerprint(identity, operation, path string, query, extra url.Values, callerID string, hasCaller bool) string {
	merged := url.Values{}
	for k, vs := range query {
		merged[k] = vs
	}
	for k, vs := range extra {
		merged[k] = vs
	}
	if hasCaller {
		merged.Set(userIDParam, callerID)
	}

	// url.Values.Encode sorts by key and percent-encodes values, which
	// gives a total ordering over arbitrary parameter values.
	payload := strings.Join([]string{identity, operation, path, merged.Encode()}, "|")
	sum := sha256.Sum256([]byte(payload))
	return keyNamespace + hex.EncodeToString(sum[:])
}
