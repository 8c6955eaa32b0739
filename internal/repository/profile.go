package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fictionverse/internal/kvstore"
	"fictionverse/internal/model"
)

// profileRepository implements ProfileRepository on the key-value store.
type profileRepository struct {
	store kvstore.Store
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(store kvstore.Store) ProfileRepository {
	return &profileRepository{store: store}
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*model.Profile, error) {
	value, err := r.store.Get(ctx, kvstore.UserKey(userID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, model.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile model.Profile
	if err := json.Unmarshal(value, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &profile, nil
}

func (r *profileRepository) Save(ctx context.Context, profile *model.Profile) error {
	value, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := r.store.Set(ctx, kvstore.UserKey(profile.ID), value); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *profileRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.store.Get(ctx, kvstore.UsernameKey(username))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return true, nil
}

func (r *profileRepository) SaveUsernameMapping(ctx context.Context, username, userID string) error {
	value, err := json.Marshal(userID)
	if err != nil {
		return fmt.Errorf("failed to encode username mapping: %w", err)
	}
	if err := r.store.Set(ctx, kvstore.UsernameKey(username), value); err != nil {
		return fmt.Errorf("failed to save username mapping: %w", err)
	}
	return nil
}
