package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fictionverse/internal/kvstore"
	"fictionverse/internal/model"
	"fictionverse/internal/repository"
	"fictionverse/internal/supabase"
)

type mockIdentityProvider struct {
	createFn    func(ctx context.Context, params supabase.CreateUserParams) (*supabase.User, error)
	createCalls []supabase.CreateUserParams
}

func (m *mockIdentityProvider) AdminCreateUser(ctx context.Context, params supabase.CreateUserParams) (*supabase.User, error) {
	m.createCalls = append(m.createCalls, params)
	if m.createFn != nil {
		return m.createFn(ctx, params)
	}
	return &supabase.User{ID: "new-user", Email: params.Email}, nil
}

func newAuthFixture(provider *mockIdentityProvider) (*AuthService, kvstore.Store) {
	store := kvstore.NewMemoryStore()
	svc := NewAuthService(
		provider,
		repository.NewProfileRepository(store),
		repository.NewPreferencesRepository(store),
	)
	return svc, store
}

func signupRequest(username string) *model.SignupRequest {
	return &model.SignupRequest{
		Email:       username + "@example.com",
		Password:    "secret123",
		DisplayName: "Alice",
		Username:    username,
	}
}

func TestAuthService_Signup_InitializesAllRecords(t *testing.T) {
	ctx := context.Background()
	provider := &mockIdentityProvider{}
	svc, store := newAuthFixture(provider)

	user, err := svc.Signup(ctx, signupRequest("alice"))
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if user.ID != "new-user" {
		t.Errorf("user.ID = %q, want new-user", user.ID)
	}

	// Provider call carries the default avatar and confirms the email.
	if len(provider.createCalls) != 1 {
		t.Fatalf("expected 1 provider call, got %d", len(provider.createCalls))
	}
	params := provider.createCalls[0]
	if !params.EmailConfirm {
		t.Error("expected email_confirm to be set")
	}
	if params.UserMetadata.Avatar != model.DefaultAvatar {
		t.Errorf("metadata avatar = %q, want default glyph", params.UserMetadata.Avatar)
	}

	// Profile, mapping and preferences are all written.
	raw, err := store.Get(ctx, kvstore.UserKey("new-user"))
	if err != nil {
		t.Fatalf("profile not written: %v", err)
	}
	var profile model.Profile
	json.Unmarshal(raw, &profile)
	if profile.Username != "alice" || profile.WorksPublished != 0 {
		t.Errorf("profile = %+v", profile)
	}

	raw, err = store.Get(ctx, kvstore.UsernameKey("alice"))
	if err != nil {
		t.Fatalf("username mapping not written: %v", err)
	}
	var mapped string
	json.Unmarshal(raw, &mapped)
	if mapped != "new-user" {
		t.Errorf("mapping = %q, want new-user", mapped)
	}

	raw, err = store.Get(ctx, kvstore.PreferencesKey("new-user"))
	if err != nil {
		t.Fatalf("preferences not written: %v", err)
	}
	var prefs model.Preferences
	json.Unmarshal(raw, &prefs)
	if prefs != model.DefaultPreferences() {
		t.Errorf("preferences = %+v, want defaults", prefs)
	}
}

func TestAuthService_Signup_DuplicateUsernameFailsBeforeProvider(t *testing.T) {
	ctx := context.Background()
	provider := &mockIdentityProvider{}
	svc, store := newAuthFixture(provider)

	if _, err := svc.Signup(ctx, signupRequest("alice")); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	firstProfile, _ := store.Get(ctx, kvstore.UserKey("new-user"))

	_, err := svc.Signup(ctx, signupRequest("alice"))
	if !errors.Is(err, model.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got: %v", err)
	}

	// The taken-username check runs before any provider call.
	if len(provider.createCalls) != 1 {
		t.Errorf("provider calls = %d, second signup must not reach the provider", len(provider.createCalls))
	}

	// First user's data unchanged.
	current, _ := store.Get(ctx, kvstore.UserKey("new-user"))
	if string(current) != string(firstProfile) {
		t.Error("first user's profile changed after failed duplicate signup")
	}
}

func TestAuthService_Signup_ProviderErrorPropagates(t *testing.T) {
	providerErr := &supabase.APIError{Status: 422, Message: "email already registered"}
	provider := &mockIdentityProvider{
		createFn: func(ctx context.Context, params supabase.CreateUserParams) (*supabase.User, error) {
			return nil, providerErr
		},
	}
	svc, store := newAuthFixture(provider)

	_, err := svc.Signup(context.Background(), signupRequest("bob"))
	if !errors.Is(err, providerErr) {
		t.Fatalf("expected provider error to propagate, got: %v", err)
	}

	// No partial state on provider failure.
	if _, err := store.Get(context.Background(), kvstore.UsernameKey("bob")); !errors.Is(err, kvstore.ErrKeyNotFound) {
		t.Errorf("username mapping must not exist after provider failure, got: %v", err)
	}
}
