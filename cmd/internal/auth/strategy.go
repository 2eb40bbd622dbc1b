// Package auth derives a caller identity from an inbound HTTP request.
//
// Two strategies exist; a deployment picks exactly one at configuration time.
// A strategy is a pure function of request headers: it never consults the
// store and never validates the identity value beyond presence.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"quill/cmd/identity"
)

// DefaultIdentityHeader is the header read by the header-literal strategy.
const DefaultIdentityHeader = "X-User-ID"

// Strategy extracts the caller's user id from a request.
// It fails with identity.ErrUnauthenticated when the required header is
// missing or malformed.
type Strategy interface {
	CallerID(r *http.Request) (string, error)
}

// HeaderLiteral reads the caller id directly from a designated header's raw
// value, no decoding.
type HeaderLiteral struct {
	Header string
}

// CallerID returns the raw header value, or ErrUnauthenticated if absent.
func (s HeaderLiteral) CallerID(r *http.Request) (string, error) {
	header := s.Header
	if header == "" {
		header = DefaultIdentityHeader
	}

	v := strings.TrimSpace(r.Header.Get(header))
	if v == "" {
		return "", identity.OpError{
			Op:   "auth.CallerID",
			Kind: identity.ErrUnauthenticated,
			Msg:  "you must be logged in to do that",
		}
	}
	return v, nil
}

// Bearer reads the caller id from the Authorization header after stripping a
// required "Bearer " prefix. The token is used directly as the identity
// value; there is no signature check and no expiry in this design.
type Bearer struct{}

// CallerID returns the bearer token, or ErrUnauthenticated if the header is
// absent or carries no Bearer credential.
func (Bearer) CallerID(r *http.Request) (string, error) {
	unauthenticated := identity.OpError{
		Op:   "auth.CallerID",
		Kind: identity.ErrUnauthenticated,
		Msg:  "you must be logged in to do that",
	}

	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return "", unauthenticated
	}

	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", unauthenticated
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", unauthenticated
	}
	return token, nil
}

// FromConfig selects a strategy by name: "bearer" or "header".
// header names the header used by the header-literal strategy; empty means
// DefaultIdentityHeader.
func FromConfig(name, header string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bearer":
		return Bearer{}, nil
	case "header":
		return HeaderLiteral{Header: header}, nil
	default:
		return nil, fmt.Errorf("auth: unknown strategy %q", name)
	}
}
