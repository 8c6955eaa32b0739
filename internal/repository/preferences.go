package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fictionverse/internal/kvstore"
	"fictionverse/internal/model"
)

// preferencesRepository implements PreferencesRepository on the key-value store.
type preferencesRepository struct {
	store kvstore.Store
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(store kvstore.Store) PreferencesRepository {
	return &preferencesRepository{store: store}
}

func (r *preferencesRepository) Get(ctx context.Context, userID string) (*model.Preferences, error) {
	value, err := r.store.Get(ctx, kvstore.PreferencesKey(userID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, model.ErrPreferencesNotFound
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	var prefs model.Preferences
	if err := json.Unmarshal(value, &prefs); err != nil {
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}
	return &prefs, nil
}

func (r *preferencesRepository) Save(ctx context.Context, userID string, prefs *model.Preferences) error {
	value, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := r.store.Set(ctx, kvstore.PreferencesKey(userID), value); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
