// Package auth is the boundary to the external authorization
// collaborator. The order core only asks "is this caller allowed to
// mutate order status"; token issuance and user identity live elsewhere.
package auth

import (
	"net/http"
	"strings"
)

// Authorizer decides whether a request may mutate order state.
type Authorizer interface {
	Authorize(r *http.Request) bool
}

// StaticTokenAuthorizer accepts requests carrying a fixed bearer token.
// An empty token authorizes nobody.
type StaticTokenAuthorizer struct {
	Token string
}

func (a StaticTokenAuthorizer) Authorize(r *http.Request) bool {
	if a.Token == "" {
		return false
	}
	header := r.Header.Get("Authorization")
	return strings.TrimPrefix(header, "Bearer ") == a.Token
}

// AllowAll authorizes every request. Used by tests and the memory
// development profile.
type AllowAll struct{}

func (AllowAll) Authorize(*http.Request) bool { return true }
