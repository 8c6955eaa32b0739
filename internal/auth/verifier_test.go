package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fictionverse/internal/supabase"
)

// =============================================================================
// MOCK RESOLVER
// =============================================================================

type mockResolver struct {
	name      string
	resolveFn func(ctx context.Context, token string) (*supabase.User, error)
	calls     int
}

func (m *mockResolver) Name() string { return m.name }

func (m *mockResolver) Resolve(ctx context.Context, token string) (*supabase.User, error) {
	m.calls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, token)
	}
	return nil, errors.New("not configured")
}

func failing(name string) *mockResolver {
	return &mockResolver{
		name: name,
		resolveFn: func(ctx context.Context, token string) (*supabase.User, error) {
			return nil, errors.New("resolution failed")
		},
	}
}

func succeeding(name, userID string) *mockResolver {
	return &mockResolver{
		name: name,
		resolveFn: func(ctx context.Context, token string) (*supabase.User, error) {
			return &supabase.User{ID: userID}, nil
		},
	}
}

// =============================================================================
// VERIFY TESTS
// =============================================================================

func TestVerifier_EmptyTokenFailsWithoutResolving(t *testing.T) {
	first := succeeding("first", "u1")
	v := NewVerifierWithResolvers(first)

	_, err := v.Verify(context.Background(), "")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got: %v", err)
	}
	if first.calls != 0 {
		t.Errorf("resolver should not be called for empty token, calls = %d", first.calls)
	}
}

func TestVerifier_FirstSuccessShortCircuits(t *testing.T) {
	first := succeeding("first", "u1")
	second := succeeding("second", "u2")
	v := NewVerifierWithResolvers(first, second)

	user, err := v.Verify(context.Background(), "opaque-token")
	if err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "u1")
	}
	if second.calls != 0 {
		t.Errorf("second resolver should not run after first success, calls = %d", second.calls)
	}
}

func TestVerifier_FallsThroughFailuresInOrder(t *testing.T) {
	first := failing("first")
	second := failing("second")
	third := succeeding("third", "u3")
	v := NewVerifierWithResolvers(first, second, third)

	user, err := v.Verify(context.Background(), "opaque-token")
	if err != nil {
		t.Fatalf("expected success from third resolver, got: %v", err)
	}
	if user.ID != "u3" {
		t.Errorf("user.ID = %q, want %q", user.ID, "u3")
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1", first.calls, second.calls, third.calls)
	}
}

func TestVerifier_ExhaustedChainFailsLikeMissingToken(t *testing.T) {
	v := NewVerifierWithResolvers(failing("first"), failing("second"), failing("third"))

	_, exhaustedErr := v.Verify(context.Background(), "opaque-token")
	_, missingErr := v.Verify(context.Background(), "")

	if !errors.Is(exhaustedErr, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for exhausted chain, got: %v", exhaustedErr)
	}
	// Both failure shapes must be indistinguishable to the caller.
	if exhaustedErr.Error() != missingErr.Error() {
		t.Errorf("exhausted chain and missing token should fail identically: %q vs %q",
			exhaustedErr, missingErr)
	}
}

func TestVerifier_EmptyUserIDCountsAsFailure(t *testing.T) {
	bogus := &mockResolver{
		name: "bogus",
		resolveFn: func(ctx context.Context, token string) (*supabase.User, error) {
			return &supabase.User{}, nil
		},
	}
	fallback := succeeding("fallback", "u9")
	v := NewVerifierWithResolvers(bogus, fallback)

	user, err := v.Verify(context.Background(), "opaque-token")
	if err != nil {
		t.Fatalf("expected fallback to resolve, got: %v", err)
	}
	if user.ID != "u9" {
		t.Errorf("user.ID = %q, want %q", user.ID, "u9")
	}
}

func TestVerifier_ExpiredJWTSkipsChain(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	resolver := succeeding("first", "u1")
	v := NewVerifierWithResolvers(resolver)

	_, err := v.Verify(context.Background(), token)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for expired token, got: %v", err)
	}
	if resolver.calls != 0 {
		t.Errorf("resolvers should not run for an expired token, calls = %d", resolver.calls)
	}
}

func TestVerifier_UnexpiredJWTReachesResolvers(t *testing.T) {
	token := signedToken(t, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	resolver := succeeding("first", "u1")
	v := NewVerifierWithResolvers(resolver)

	if _, err := v.Verify(context.Background(), token); err != nil {
		t.Fatalf("expected success, got: %v", err)
	}
	if resolver.calls != 1 {
		t.Errorf("resolver calls = %d, want 1", resolver.calls)
	}
}

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}
