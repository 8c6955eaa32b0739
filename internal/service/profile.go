package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"fictionverse/internal/model"
	"fictionverse/internal/repository"
	"fictionverse/internal/supabase"
)

// ProfileService handles profile reads, updates and lazy materialization.
type ProfileService struct {
	profiles repository.ProfileRepository
	prefs    repository.PreferencesRepository
}

func NewProfileService(profiles repository.ProfileRepository, prefs repository.PreferencesRepository) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		prefs:    prefs,
	}
}

// GetOrCreate returns the caller's profile, materializing it from identity
// metadata the first time a resolved token has no stored profile.
//
// The operation is idempotent: when a profile already exists it is returned
// untouched, and the username mapping and default preferences are only
// written if absent. Token verification itself stays side-effect free; this
// is the single place first-seen users become persistent state.
func (s *ProfileService) GetOrCreate(ctx context.Context, user *supabase.User) (*model.Profile, error) {
	profile, err := s.profiles.Get(ctx, user.ID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, model.ErrProfileNotFound) {
		return nil, err
	}

	profile = materializeProfile(user)
	log.Printf("[Profile] Materializing profile for user=%s username=%s", profile.ID, profile.Username)

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save materialized profile: %w", err)
	}

	exists, err := s.profiles.UsernameExists(ctx, profile.Username)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.profiles.SaveUsernameMapping(ctx, profile.Username, profile.ID); err != nil {
			return nil, err
		}
	}

	if _, err := s.prefs.Get(ctx, user.ID); errors.Is(err, model.ErrPreferencesNotFound) {
		defaults := model.DefaultPreferences()
		if err := s.prefs.Save(ctx, user.ID, &defaults); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return profile, nil
}

// Update shallow-merges patch into the caller's existing profile. ID and
// JoinDate are immutable and forced back to their stored values. Update never
// creates: a missing profile yields ErrProfileNotFound.
func (s *ProfileService) Update(ctx context.Context, userID string, patch Patch) (*model.Profile, error) {
	current, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged, err := mergeJSON(*current, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge profile update: %w", err)
	}
	merged.ID = current.ID
	merged.JoinDate = current.JoinDate

	if err := s.profiles.Save(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// AdjustWorksPublished applies delta to the user's worksPublished counter,
// floored at 0. Callers treat failures as best-effort.
func (s *ProfileService) AdjustWorksPublished(ctx context.Context, userID string, delta int) error {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return err
	}

	profile.WorksPublished += delta
	if profile.WorksPublished < 0 {
		profile.WorksPublished = 0
	}
	return s.profiles.Save(ctx, profile)
}

// AdjustTotalLikes applies delta to the user's totalLikes counter, floored
// at 0. Called by the like worker.
func (s *ProfileService) AdjustTotalLikes(ctx context.Context, userID string, delta int) error {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return err
	}

	profile.TotalLikes += delta
	if profile.TotalLikes < 0 {
		profile.TotalLikes = 0
	}
	return s.profiles.Save(ctx, profile)
}

// materializeProfile synthesizes a profile from identity metadata, falling
// back to derivable defaults (the email local part, the default avatar).
func materializeProfile(user *supabase.User) *model.Profile {
	meta := user.UserMetadata

	username := meta.Username
	if username == "" {
		username = emailLocalPart(user.Email, "user")
	}

	displayName := meta.DisplayName
	if displayName == "" {
		displayName = emailLocalPart(user.Email, "User")
	}

	avatar := meta.Avatar
	if avatar == "" {
		avatar = model.DefaultAvatar
	}

	joinDate := user.CreatedAt
	if joinDate.IsZero() {
		joinDate = time.Now().UTC()
	}

	return &model.Profile{
		ID:          user.ID,
		Username:    username,
		DisplayName: displayName,
		Avatar:      avatar,
		Bio:         meta.Bio,
		JoinDate:    joinDate,
	}
}

func emailLocalPart(email, fallback string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		return fallback
	}
	return local
}
