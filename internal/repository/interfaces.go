package repository

import (
	"context"

	"fictionverse/internal/model"
)

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*model.Profile, error)
	Save(ctx context.Context, profile *model.Profile) error
	// UsernameExists reports whether a username mapping is already present.
	UsernameExists(ctx context.Context, username string) (bool, error)
	// SaveUsernameMapping records username -> userID. Mappings are created at
	// most once; callers check UsernameExists first.
	SaveUsernameMapping(ctx context.Context, username, userID string) error
}

type StoryRepository interface {
	Get(ctx context.Context, storyID string) (*model.Story, error)
	Save(ctx context.Context, story *model.Story) error
	Delete(ctx context.Context, storyID string) error
	ListAll(ctx context.Context) ([]model.Story, error)
	// ListByAuthor filters the full scan server-side. O(n) in total story
	// count; kept behind this method so an index can replace it later.
	ListByAuthor(ctx context.Context, authorID string) ([]model.Story, error)
}

type LikeRepository interface {
	Exists(ctx context.Context, userID, storyID string) (bool, error)
	Save(ctx context.Context, like *model.Like) error
	Delete(ctx context.Context, userID, storyID string) error
}

type PreferencesRepository interface {
	Get(ctx context.Context, userID string) (*model.Preferences, error)
	Save(ctx context.Context, userID string, prefs *model.Preferences) error
}
