package client

import (
	"errors"
	"fmt"
	"log"
	"net/http"
)

// ErrExternalCallBlocked is returned by the transport gate for any request to
// the authentication provider while guest mode is active.
var ErrExternalCallBlocked = errors.New("guest mode: external calls disabled")

// GuardedTransport is a RoundTripper that blocks requests to the auth
// provider's host while guest mode is active. It sits at the lowest layer so
// a call site that forgets to check the session mode still cannot reach the
// provider.
type GuardedTransport struct {
	base      http.RoundTripper
	authHost  string
	guestMode func() bool
}

// NewGuardedTransport wraps base (nil means http.DefaultTransport). authHost
// is the provider host to block; guestMode reports whether the gate is armed.
func NewGuardedTransport(base http.RoundTripper, authHost string, guestMode func() bool) *GuardedTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &GuardedTransport{
		base:      base,
		authHost:  authHost,
		guestMode: guestMode,
	}
}

func (t *GuardedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Relative and local requests always pass.
	host := req.URL.Host
	if host != "" && t.guestMode() && host == t.authHost {
		log.Printf("[Client] Blocked call to %s in guest mode", req.URL)
		return nil, fmt.Errorf("blocked request to %s: %w", host, ErrExternalCallBlocked)
	}
	return t.base.RoundTrip(req)
}
