package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fictionverse/internal/supabase"
)

// ErrUnauthenticated is returned when no resolver can produce an identity.
// Callers cannot distinguish an exhausted chain from a missing token; both
// yield the same error so the verification strategy in use is not leaked.
var ErrUnauthenticated = errors.New("no resolvable identity for token")

// TokenVerifier is the narrow interface handlers and middleware depend on.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*supabase.User, error)
}

// Verifier runs an ordered chain of token resolvers; the first success wins.
// Intermediate failures are logged, never propagated.
type Verifier struct {
	resolvers []TokenResolver
}

// NewVerifier builds the standard three-strategy chain against the provider:
// admin lookup, bearer-header forwarding, then session establishment.
func NewVerifier(client *supabase.Client) *Verifier {
	return NewVerifierWithResolvers(
		&adminResolver{client: client},
		&headerResolver{client: client},
		&sessionResolver{client: client},
	)
}

// NewVerifierWithResolvers builds a verifier over an explicit chain.
func NewVerifierWithResolvers(resolvers ...TokenResolver) *Verifier {
	return &Verifier{resolvers: resolvers}
}

// Verify resolves token to a user identity or fails with ErrUnauthenticated.
// Verification performs no writes; lazy profile materialization is the
// service layer's concern.
func (v *Verifier) Verify(ctx context.Context, token string) (*supabase.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	if expired := previewClaims(token); expired {
		return nil, ErrUnauthenticated
	}

	for _, resolver := range v.resolvers {
		user, err := resolver.Resolve(ctx, token)
		if err != nil {
			log.Printf("[Auth] Resolver %q failed: %v", resolver.Name(), err)
			continue
		}
		if user == nil || user.ID == "" {
			log.Printf("[Auth] Resolver %q returned no user", resolver.Name())
			continue
		}
		log.Printf("[Auth] Resolver %q resolved user=%s", resolver.Name(), user.ID)
		return user, nil
	}

	log.Printf("[Auth] All %d resolvers exhausted", len(v.resolvers))
	return nil, ErrUnauthenticated
}

// previewClaims decodes the token without verifying its signature, logs the
// subject for tracing, and reports whether the token is already expired so
// the chain can be skipped. Opaque (non-JWT) tokens pass straight through to
// the resolvers.
func previewClaims(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	sub, _ := claims.GetSubject()
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		log.Printf("[Auth] Token preview: sub=%s exp=none", sub)
		return false
	}

	if exp.Before(time.Now()) {
		log.Printf("[Auth] Token preview: sub=%s expired at %s", sub, exp.Format(time.RFC3339))
		return true
	}
	return false
}
