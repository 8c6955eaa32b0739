package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"fictionverse/internal/model"
	"fictionverse/internal/repository"
	"fictionverse/internal/supabase"
)

// IdentityProvider is the slice of the auth provider the signup flow needs.
type IdentityProvider interface {
	AdminCreateUser(ctx context.Context, params supabase.CreateUserParams) (*supabase.User, error)
}

// AuthService handles the signup flow: provider account creation plus the
// initial profile, username mapping and preferences.
type AuthService struct {
	provider IdentityProvider
	profiles repository.ProfileRepository
	prefs    repository.PreferencesRepository
}

func NewAuthService(provider IdentityProvider, profiles repository.ProfileRepository, prefs repository.PreferencesRepository) *AuthService {
	return &AuthService{
		provider: provider,
		profiles: profiles,
		prefs:    prefs,
	}
}

// Signup creates a confirmed auth user and initializes the user's stored
// state. The username mapping is claimed exactly once; a taken username
// fails before any provider call.
func (s *AuthService) Signup(ctx context.Context, req *model.SignupRequest) (*supabase.User, error) {
	taken, err := s.profiles.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, model.ErrUsernameTaken
	}

	now := time.Now().UTC()
	user, err := s.provider.AdminCreateUser(ctx, supabase.CreateUserParams{
		Email:    req.Email,
		Password: req.Password,
		UserMetadata: supabase.UserMetadata{
			DisplayName: req.DisplayName,
			Username:    req.Username,
			Avatar:      model.DefaultAvatar,
			JoinDate:    now.Format(time.RFC3339),
		},
		// Confirm immediately; no email server is configured.
		EmailConfirm: true,
	})
	if err != nil {
		log.Printf("[Auth] Provider rejected signup for username=%s: %v", req.Username, err)
		return nil, err
	}

	if err := s.profiles.SaveUsernameMapping(ctx, req.Username, user.ID); err != nil {
		return nil, err
	}

	profile := &model.Profile{
		ID:          user.ID,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Avatar:      model.DefaultAvatar,
		JoinDate:    now,
	}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	defaults := model.DefaultPreferences()
	if err := s.prefs.Save(ctx, user.ID, &defaults); err != nil {
		return nil, err
	}

	log.Printf("[Auth] Signup OK: user=%s username=%s", user.ID, req.Username)
	return user, nil
}
