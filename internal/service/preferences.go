package service

import (
	"context"
	"errors"
	"fmt"

	"fictionverse/internal/model"
	"fictionverse/internal/repository"
)

// PreferencesService handles per-user preference reads and merged updates.
type PreferencesService struct {
	prefs repository.PreferencesRepository
}

func NewPreferencesService(prefs repository.PreferencesRepository) *PreferencesService {
	return &PreferencesService{prefs: prefs}
}

// Get returns the caller's stored preferences, or the defaults when nothing
// is stored yet. The defaults are NOT persisted here; only signup, profile
// materialization and Update write the preferences key.
func (s *PreferencesService) Get(ctx context.Context, userID string) (*model.Preferences, error) {
	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrPreferencesNotFound) {
			defaults := model.DefaultPreferences()
			return &defaults, nil
		}
		return nil, err
	}
	return prefs, nil
}

// Update shallow-merges patch into the stored preferences and persists the
// result. When nothing is stored yet the merge base is the zero value, so a
// partial first write leaves unmentioned fields at their zero values.
func (s *PreferencesService) Update(ctx context.Context, userID string, patch Patch) (*model.Preferences, error) {
	base := model.Preferences{}
	if stored, err := s.prefs.Get(ctx, userID); err == nil {
		base = *stored
	} else if !errors.Is(err, model.ErrPreferencesNotFound) {
		return nil, err
	}

	merged, err := mergeJSON(base, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge preferences update: %w", err)
	}

	if err := s.prefs.Save(ctx, userID, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}
