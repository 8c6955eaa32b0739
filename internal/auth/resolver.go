package auth

import (
	"context"

	"fictionverse/internal/supabase"
)

// TokenResolver resolves a bearer token to a provider identity. Resolution
// must be idempotent and side-effect free: a resolver may be retried or
// skipped without leaving partial state behind.
type TokenResolver interface {
	Name() string
	Resolve(ctx context.Context, token string) (*supabase.User, error)
}

// adminResolver asks the provider for the token's user using service-role
// credentials.
type adminResolver struct {
	client *supabase.Client
}

func (r *adminResolver) Name() string { return "admin" }

func (r *adminResolver) Resolve(ctx context.Context, token string) (*supabase.User, error) {
	return r.client.AdminGetUser(ctx, token)
}

// headerResolver forwards the original bearer header on an anon-key request
// and asks for the current session's user.
type headerResolver struct {
	client *supabase.Client
}

func (r *headerResolver) Name() string { return "header" }

func (r *headerResolver) Resolve(ctx context.Context, token string) (*supabase.User, error) {
	return r.client.GetUserWithToken(ctx, token)
}

// sessionResolver establishes a session by presenting the token as a refresh
// credential. Compatibility path for provider/runtime combinations that
// reject the direct lookups.
type sessionResolver struct {
	client *supabase.Client
}

func (r *sessionResolver) Name() string { return "session" }

func (r *sessionResolver) Resolve(ctx context.Context, token string) (*supabase.User, error) {
	return r.client.RefreshSession(ctx, token)
}
