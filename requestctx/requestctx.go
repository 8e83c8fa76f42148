// Package requestctx carries the request-derived inputs to cache key
// derivation as an explicit value object: the request path, the query
// parameters, and the optionally authenticated caller. Passing it explicitly
// keeps fingerprint computation pure — no ambient request or session state
// is consulted.
package requestctx

import (
	"net/http"
	"net/url"
)

// User is the optionally authenticated caller. Identifier returns the
// caller's stable identifier (typically a scalar); a nil return means the
// identity could not be resolved.
type User interface {
	Identifier() any
}

// Context is the request-scoped input to fingerprint computation.
type Context struct {
	// Path is the request path, e.g. "/api/users".
	Path string
	// Query holds the request query parameters.
	Query url.Values
	// User is the authenticated caller, or nil for anonymous requests.
	User User
}

// New builds a Context from its parts. query may be nil.
func New(path string, query url.Values, user User) *Context {
	if query == nil {
		query = url.Values{}
	}
	return &Context{Path: path, Query: query, User: user}
}

// FromHTTP builds a Context from an incoming HTTP request. user may be nil
// for anonymous requests.
func FromHTTP(r *http.Request, user User) *Context {
	return New(r.URL.Path, r.URL.Query(), user)
}

type attrUser struct {
	attrs map[string]any
	attr  string
}

func (u attrUser) Identifier() any {
	return u.attrs[u.attr]
}

// UserFromAttrs adapts a bag of caller attributes (claims, session fields)
// to a User identified by the named attribute. If the attribute is absent,
// Identifier returns nil and the caller is treated as unresolved.
func UserFromAttrs(attrs map[string]any, attr string) User {
	return attrUser{attrs: attrs, attr: attr}
}
