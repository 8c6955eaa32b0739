package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"fictionverse/internal/model"
	"fictionverse/internal/queue"
	"fictionverse/internal/repository"
	"fictionverse/internal/supabase"
)

// StoryService handles story CRUD, ownership enforcement and the like toggle.
type StoryService struct {
	stories  repository.StoryRepository
	likes    repository.LikeRepository
	profiles *ProfileService

	// publisher is optional; when nil, like events are not emitted and the
	// totalLikes aggregate is simply not maintained.
	publisher queue.Publisher
}

func NewStoryService(stories repository.StoryRepository, likes repository.LikeRepository, profiles *ProfileService) *StoryService {
	return &StoryService{
		stories:  stories,
		likes:    likes,
		profiles: profiles,
	}
}

// SetPublisher wires the like-event publisher (optional).
func (s *StoryService) SetPublisher(publisher queue.Publisher) {
	s.publisher = publisher
}

// ListAll returns every stored story, unfiltered and unpaginated.
func (s *StoryService) ListAll(ctx context.Context) ([]model.Story, error) {
	return s.stories.ListAll(ctx)
}

// GetByID returns a single story or model.ErrStoryNotFound.
func (s *StoryService) GetByID(ctx context.Context, storyID string) (*model.Story, error) {
	return s.stories.Get(ctx, storyID)
}

// ListByAuthor returns all stories whose authorId equals authorID.
func (s *StoryService) ListByAuthor(ctx context.Context, authorID string) ([]model.Story, error) {
	return s.stories.ListByAuthor(ctx, authorID)
}

// Create stores a new story for the verified caller. The ID is generated
// server-side, AuthorID is stamped from the identity, and Author snapshots
// the caller's profile username (falling back to the identity email). On
// success the owner's worksPublished counter is incremented best-effort.
func (s *StoryService) Create(ctx context.Context, user *supabase.User, req *model.CreateStoryRequest) (*model.Story, error) {
	storyType := req.Type
	if storyType == "" {
		storyType = model.StoryTypeOriginal
	}
	if storyType != model.StoryTypeOriginal && storyType != model.StoryTypeInspired {
		return nil, model.ErrInvalidStoryType
	}
	if storyType == model.StoryTypeInspired && req.Universe == "" {
		return nil, model.ErrUniverseRequired
	}

	status := req.Status
	if status == "" {
		status = model.StoryStatusDraft
	}

	author := user.Email
	profile, profileErr := s.profiles.GetOrCreate(ctx, user)
	if profileErr == nil {
		author = profile.Username
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	chapters := req.Chapters
	if chapters == nil {
		chapters = []model.Chapter{}
	}

	now := time.Now().UTC()
	story := &model.Story{
		ID:          uuid.NewString(),
		AuthorID:    user.ID,
		Author:      author,
		Title:       req.Title,
		Description: req.Description,
		Type:        storyType,
		Universe:    req.Universe,
		Tags:        tags,
		Chapters:    chapters,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.stories.Save(ctx, story); err != nil {
		return nil, err
	}

	// Best-effort: a missing profile skips the counter, it never fails the create.
	if profileErr == nil {
		if err := s.profiles.AdjustWorksPublished(ctx, user.ID, 1); err != nil {
			log.Printf("[Story] Failed to bump worksPublished for user=%s: %v", user.ID, err)
		}
	}

	log.Printf("[Story] Created story=%s author=%s type=%s", story.ID, story.AuthorID, story.Type)
	return story, nil
}

// Update shallow-merges patch into an existing story owned by userID.
// Existence is checked before ownership; ID, AuthorID and CreatedAt are
// forced back to their stored values and UpdatedAt is refreshed.
func (s *StoryService) Update(ctx context.Context, userID, storyID string, patch Patch) (*model.Story, error) {
	current, err := s.stories.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != userID {
		return nil, model.ErrNotStoryOwner
	}

	merged, err := mergeJSON(*current, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge story update: %w", err)
	}
	merged.ID = current.ID
	merged.AuthorID = current.AuthorID
	merged.CreatedAt = current.CreatedAt
	merged.UpdatedAt = time.Now().UTC()

	if err := s.stories.Save(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Delete removes a story owned by userID and best-effort decrements the
// owner's worksPublished counter. Like flags for the story are left in place
// as tombstones; the toggle path requires story existence, so they are inert.
func (s *StoryService) Delete(ctx context.Context, userID, storyID string) error {
	story, err := s.stories.Get(ctx, storyID)
	if err != nil {
		return err
	}
	if story.AuthorID != userID {
		return model.ErrNotStoryOwner
	}

	if err := s.stories.Delete(ctx, storyID); err != nil {
		return err
	}

	if err := s.profiles.AdjustWorksPublished(ctx, userID, -1); err != nil {
		if !errors.Is(err, model.ErrProfileNotFound) {
			log.Printf("[Story] Failed to drop worksPublished for user=%s: %v", userID, err)
		}
	}

	log.Printf("[Story] Deleted story=%s owner=%s", storyID, userID)
	return nil
}

// ToggleLike flips the per-(user, story) like flag and adjusts the story's
// likes counter in lockstep, floored at 0. Calling it twice returns to the
// original state; each call converges to one definite state.
func (s *StoryService) ToggleLike(ctx context.Context, userID, storyID string) (*model.LikeResult, error) {
	story, err := s.stories.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}

	liked, err := s.likes.Exists(ctx, userID, storyID)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := s.likes.Delete(ctx, userID, storyID); err != nil {
			return nil, err
		}
		story.Likes--
		if story.Likes < 0 {
			story.Likes = 0
		}
	} else {
		like := &model.Like{
			StoryID:   storyID,
			UserID:    userID,
			Timestamp: time.Now().UTC(),
		}
		if err := s.likes.Save(ctx, like); err != nil {
			return nil, err
		}
		story.Likes++
	}

	if err := s.stories.Save(ctx, story); err != nil {
		return nil, err
	}

	s.publishLikeEvent(ctx, story, userID, !liked)

	return &model.LikeResult{
		Liked: !liked,
		Likes: story.Likes,
	}, nil
}

// publishLikeEvent emits the toggle outcome for the totalLikes worker.
// Best-effort: publish failures are logged, never surfaced to the caller.
func (s *StoryService) publishLikeEvent(ctx context.Context, story *model.Story, userID string, liked bool) {
	if s.publisher == nil {
		return
	}

	event := queue.NewStoryUnlikedEvent(story.ID, story.AuthorID, userID)
	if liked {
		event = queue.NewStoryLikedEvent(story.ID, story.AuthorID, userID)
	}

	if _, err := s.publisher.Publish(ctx, queue.StreamLikes, event); err != nil {
		log.Printf("[Story] Failed to publish like event story=%s: %v", story.ID, err)
	}
}
