package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fictionverse/internal/kvstore"
	"fictionverse/internal/model"
)

// likeRepository implements LikeRepository on the key-value store.
type likeRepository struct {
	store kvstore.Store
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(store kvstore.Store) LikeRepository {
	return &likeRepository{store: store}
}

func (r *likeRepository) Exists(ctx context.Context, userID, storyID string) (bool, error) {
	_, err := r.store.Get(ctx, kvstore.LikeKey(userID, storyID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return true, nil
}

func (r *likeRepository) Save(ctx context.Context, like *model.Like) error {
	value, err := json.Marshal(like)
	if err != nil {
		return fmt.Errorf("failed to encode like: %w", err)
	}
	if err := r.store.Set(ctx, kvstore.LikeKey(like.UserID, like.StoryID), value); err != nil {
		return fmt.Errorf("failed to save like: %w", err)
	}
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, storyID string) error {
	if err := r.store.Delete(ctx, kvstore.LikeKey(userID, storyID)); err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}
