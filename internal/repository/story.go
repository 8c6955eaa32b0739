package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"fictionverse/internal/kvstore"
	"fictionverse/internal/model"
)

// storyRepository implements StoryRepository on the key-value store.
type storyRepository struct {
	store kvstore.Store
}

// NewStoryRepository creates a new story repository
func NewStoryRepository(store kvstore.Store) StoryRepository {
	return &storyRepository{store: store}
}

func (r *storyRepository) Get(ctx context.Context, storyID string) (*model.Story, error) {
	value, err := r.store.Get(ctx, kvstore.StoryKey(storyID))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, model.ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}

	var story model.Story
	if err := json.Unmarshal(value, &story); err != nil {
		return nil, fmt.Errorf("failed to decode story: %w", err)
	}
	return &story, nil
}

func (r *storyRepository) Save(ctx context.Context, story *model.Story) error {
	value, err := json.Marshal(story)
	if err != nil {
		return fmt.Errorf("failed to encode story: %w", err)
	}
	if err := r.store.Set(ctx, kvstore.StoryKey(story.ID), value); err != nil {
		return fmt.Errorf("failed to save story: %w", err)
	}
	return nil
}

func (r *storyRepository) Delete(ctx context.Context, storyID string) error {
	if err := r.store.Delete(ctx, kvstore.StoryKey(storyID)); err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

func (r *storyRepository) ListAll(ctx context.Context) ([]model.Story, error) {
	entries, err := r.store.List(ctx, kvstore.PrefixStory)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	stories := make([]model.Story, 0, len(entries))
	for _, entry := range entries {
		var story model.Story
		if err := json.Unmarshal(entry.Value, &story); err != nil {
			// Skip malformed entries instead of failing the whole listing.
			log.Printf("[StoryRepo] Skipping malformed entry %s: %v", entry.Key, err)
			continue
		}
		stories = append(stories, story)
	}
	return stories, nil
}

func (r *storyRepository) ListByAuthor(ctx context.Context, authorID string) ([]model.Story, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	stories := make([]model.Story, 0)
	for _, story := range all {
		if story.AuthorID == authorID {
			stories = append(stories, story)
		}
	}
	return stories, nil
}
