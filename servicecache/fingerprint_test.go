package servicecache

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type userService struct{}
type orderService struct{}

func TestIdentityStableAndDistinct(t *testing.T) {
	assert.Equal(t, Identity(&userService{}), Identity(&userService{}))
	assert.NotEqual(t, Identity(&userService{}), Identity(&orderService{}))
	// Identity comes from the type, not the instance.
	a, b := &userService{}, &userService{}
	assert.Equal(t, Identity(a), Identity(b))
}

func TestGroupTagStable(t *testing.T) {
	assert.Equal(t, GroupTag(&userService{}), GroupTag(&userService{}))
	assert.NotEqual(t, GroupTag(&userService{}), GroupTag(&orderService{}))
	assert.Len(t, GroupTag(&userService{}), 16)
}

func TestFingerprintDeterministic(t *testing.T) {
	// Same logical parameters assembled in different insertion orders.
	q1 := url.Values{}
	q1.Set("page", "1")
	q1.Set("sort", "name")
	q1.Set("filter", "active")

	q2 := url.Values{}
	q2.Set("filter", "active")
	q2.Set("sort", "name")
	q2.Set("page", "1")

	fp1 := fingerprint("svc", "List", "/api/users", q1, nil, "", false)
	fp2 := fingerprint("svc", "List", "/api/users", q2, nil, "", false)
	assert.Equal(t, fp1, fp2)
}

func TestFingerprintFixedLengthAndNamespace(t *testing.T) {
	short := fingerprint("s", "o", "/", nil, nil, "", false)
	long := fingerprint("a very long service identity", "SomeOperation", "/deeply/nested/path",
		url.Values{"q": {strings.Repeat("x", 1024)}}, nil, "12345", true)
	assert.Len(t, short, len(long))
	assert.True(t, strings.HasPrefix(short, "service-cache:"))
	assert.True(t, strings.HasPrefix(long, "service-cache:"))
}

func TestFingerprintSensitivity(t *testing.T) {
	base := fingerprint("svc", "List", "/api/users", url.Values{"page": {"1"}}, nil, "", false)

	assert.NotEqual(t, base, fingerprint("other", "List", "/api/users", url.Values{"page": {"1"}}, nil, "", false))
	assert.NotEqual(t, base, fingerprint("svc", "Count", "/api/users", url.Values{"page": {"1"}}, nil, "", false))
	assert.NotEqual(t, base, fingerprint("svc", "List", "/api/orders", url.Values{"page": {"1"}}, nil, "", false))
	assert.NotEqual(t, base, fingerprint("svc", "List", "/api/users", url.Values{"page": {"2"}}, nil, "", false))
	assert.NotEqual(t, base, fingerprint("svc", "List", "/api/users", url.Values{"page": {"1"}}, nil, "7", true))
}

func TestFingerprintExtraParamsWin(t *testing.T) {
	query := url.Values{"page": {"1"}}
	extra := url.Values{"page": {"2"}}

	merged := fingerprint("svc", "List", "/", query, extra, "", false)
	extraOnly := fingerprint("svc", "List", "/", nil, url.Values{"page": {"2"}}, "", false)
	assert.Equal(t, extraOnly, merged, "extra params override query params on collision")
}

func TestFingerprintAwkwardValues(t *testing.T) {
	// Empty, numeric, multi-byte, and reserved-character values must all
	// serialize unambiguously.
	a := fingerprint("svc", "op", "/", url.Values{"k": {""}}, nil, "", false)
	b := fingerprint("svc", "op", "/", url.Values{"k": {"0"}}, nil, "", false)
	c := fingerprint("svc", "op", "/", url.Values{"k": {"héllo wörld"}}, nil, "", false)
	d := fingerprint("svc", "op", "/", url.Values{"k": {"a&b=c"}}, nil, "", false)
	e := fingerprint("svc", "op", "/", url.Values{"k": {"a"}, "kb": {"=c"}}, nil, "", false)
	all := []string{a, b, c, d, e}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			assert.NotEqual(t, all[i], all[j])
		}
	}
}

func TestFingerprintReservedUserKeyCollision(t *testing.T) {
	// A caller-supplied user_id param occupies the same slot as the
	// injected caller identity. Known ambiguity: the two dimensions merge.
	withCaller := fingerprint("svc", "op", "/", nil, nil, "7", true)
	withParam := fingerprint("svc", "op", "/", url.Values{"user_id": {"7"}}, nil, "", false)
	assert.Equal(t, withCaller, withParam)
}
