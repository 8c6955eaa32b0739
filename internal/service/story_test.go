package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"fictionverse/internal/kvstore"
	"fictionverse/internal/model"
	"fictionverse/internal/queue"
	"fictionverse/internal/repository"
)

// =============================================================================
// MOCK PUBLISHER
// =============================================================================

type mockPublisher struct {
	events []queue.LikeEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.LikeEvent) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.events = append(m.events, event)
	return "1-0", nil
}

// =============================================================================
// FIXTURE
// =============================================================================

func newStoryFixture() (*StoryService, *ProfileService, kvstore.Store) {
	store := kvstore.NewMemoryStore()
	profiles := NewProfileService(
		repository.NewProfileRepository(store),
		repository.NewPreferencesRepository(store),
	)
	stories := NewStoryService(
		repository.NewStoryRepository(store),
		repository.NewLikeRepository(store),
		profiles,
	)
	return stories, profiles, store
}

func createTestStory(t *testing.T, svc *StoryService, userID, title string) *model.Story {
	t.Helper()
	story, err := svc.Create(context.Background(), testUser(userID), &model.CreateStoryRequest{
		Title: title,
		Type:  model.StoryTypeOriginal,
	})
	if err != nil {
		t.Fatalf("failed to create story: %v", err)
	}
	return story
}

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestStoryService_Create_StampsServerFields(t *testing.T) {
	ctx := context.Background()
	svc, profiles, _ := newStoryFixture()
	user := testUser("u1")

	story, err := svc.Create(ctx, user, &model.CreateStoryRequest{
		Title:       "The Long Night",
		Description: "A tale",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if story.ID == "" {
		t.Error("expected server-generated id")
	}
	if story.AuthorID != "u1" {
		t.Errorf("authorId = %q, want u1", story.AuthorID)
	}
	if story.Author != "alice" {
		t.Errorf("author snapshot = %q, want profile username", story.Author)
	}
	if story.Type != model.StoryTypeOriginal {
		t.Errorf("type = %q, want default original", story.Type)
	}
	if story.Status != model.StoryStatusDraft {
		t.Errorf("status = %q, want default draft", story.Status)
	}
	if story.Tags == nil || story.Chapters == nil {
		t.Error("tags and chapters must be empty slices, not nil")
	}
	if story.CreatedAt.IsZero() || !story.CreatedAt.Equal(story.UpdatedAt) {
		t.Errorf("timestamps not stamped: createdAt=%v updatedAt=%v", story.CreatedAt, story.UpdatedAt)
	}

	profile, err := profiles.GetOrCreate(ctx, user)
	if err != nil {
		t.Fatalf("profile read failed: %v", err)
	}
	if profile.WorksPublished != 1 {
		t.Errorf("worksPublished = %d, want 1", profile.WorksPublished)
	}
}

func TestStoryService_Create_RejectsUnknownType(t *testing.T) {
	svc, _, _ := newStoryFixture()

	_, err := svc.Create(context.Background(), testUser("u1"), &model.CreateStoryRequest{
		Title: "Bad",
		Type:  "remix",
	})
	if !errors.Is(err, model.ErrInvalidStoryType) {
		t.Fatalf("expected ErrInvalidStoryType, got: %v", err)
	}
}

func TestStoryService_Create_InspiredRequiresUniverse(t *testing.T) {
	svc, _, _ := newStoryFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, testUser("u1"), &model.CreateStoryRequest{
		Title: "Untethered",
		Type:  model.StoryTypeInspired,
	})
	if !errors.Is(err, model.ErrUniverseRequired) {
		t.Fatalf("expected ErrUniverseRequired, got: %v", err)
	}

	story, err := svc.Create(ctx, testUser("u1"), &model.CreateStoryRequest{
		Title:    "Tethered",
		Type:     model.StoryTypeInspired,
		Universe: "Middle-earth",
	})
	if err != nil {
		t.Fatalf("create with universe failed: %v", err)
	}
	if story.Universe != "Middle-earth" {
		t.Errorf("universe = %q, want Middle-earth", story.Universe)
	}
}

// =============================================================================
// UPDATE / DELETE TESTS
// =============================================================================

func TestStoryService_Update_NonOwnerForbiddenAndUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoryFixture()
	story := createTestStory(t, svc, "u1", "Original Title")

	_, err := svc.Update(ctx, "u2", story.ID, Patch{
		"title": json.RawMessage(`"Stolen Title"`),
	})
	if !errors.Is(err, model.ErrNotStoryOwner) {
		t.Fatalf("expected ErrNotStoryOwner, got: %v", err)
	}

	current, err := svc.GetByID(ctx, story.ID)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if current.Title != "Original Title" {
		t.Errorf("title = %q, story must be unchanged after forbidden update", current.Title)
	}
}

func TestStoryService_Update_MissingStoryBeatsOwnership(t *testing.T) {
	svc, _, _ := newStoryFixture()

	// Existence is checked before ownership, so any caller gets NotFound.
	_, err := svc.Update(context.Background(), "u2", "no-such-story", Patch{})
	if !errors.Is(err, model.ErrStoryNotFound) {
		t.Fatalf("expected ErrStoryNotFound, got: %v", err)
	}
}

func TestStoryService_Update_ForcesImmutableFields(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoryFixture()
	story := createTestStory(t, svc, "u1", "Before")

	updated, err := svc.Update(ctx, "u1", story.ID, Patch{
		"id":        json.RawMessage(`"hijacked"`),
		"authorId":  json.RawMessage(`"u2"`),
		"createdAt": json.RawMessage(`"1999-01-01T00:00:00Z"`),
		"title":     json.RawMessage(`"After"`),
		"status":    json.RawMessage(`"published"`),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.ID != story.ID || updated.AuthorID != "u1" {
		t.Errorf("immutable identity changed: id=%q authorId=%q", updated.ID, updated.AuthorID)
	}
	if !updated.CreatedAt.Equal(story.CreatedAt) {
		t.Errorf("createdAt changed to %v", updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(story.UpdatedAt) && !updated.UpdatedAt.Equal(story.UpdatedAt) {
		t.Errorf("updatedAt not refreshed: %v", updated.UpdatedAt)
	}
	if updated.Title != "After" || updated.Status != model.StoryStatusPublished {
		t.Errorf("mutable fields not merged: %+v", updated)
	}
}

func TestStoryService_Delete_DecrementsWorksPublished(t *testing.T) {
	ctx := context.Background()
	svc, profiles, _ := newStoryFixture()
	user := testUser("u1")
	story := createTestStory(t, svc, "u1", "Doomed")

	if err := svc.Delete(ctx, "u1", story.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.GetByID(ctx, story.ID); !errors.Is(err, model.ErrStoryNotFound) {
		t.Errorf("expected ErrStoryNotFound after delete, got: %v", err)
	}

	profile, _ := profiles.GetOrCreate(ctx, user)
	if profile.WorksPublished != 0 {
		t.Errorf("worksPublished = %d, want 0 after create+delete", profile.WorksPublished)
	}

	// Deleting again fails NotFound, counter stays floored.
	if err := svc.Delete(ctx, "u1", story.ID); !errors.Is(err, model.ErrStoryNotFound) {
		t.Errorf("expected ErrStoryNotFound on second delete, got: %v", err)
	}
}

func TestStoryService_Delete_NonOwnerForbidden(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoryFixture()
	story := createTestStory(t, svc, "u1", "Keep Out")

	if err := svc.Delete(ctx, "u2", story.ID); !errors.Is(err, model.ErrNotStoryOwner) {
		t.Fatalf("expected ErrNotStoryOwner, got: %v", err)
	}
	if _, err := svc.GetByID(ctx, story.ID); err != nil {
		t.Errorf("story must survive a forbidden delete: %v", err)
	}
}

func TestStoryService_Delete_LeavesLikeTombstones(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newStoryFixture()
	story := createTestStory(t, svc, "u1", "Liked Then Gone")

	if _, err := svc.ToggleLike(ctx, "u2", story.ID); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if err := svc.Delete(ctx, "u1", story.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// Like flags are not cascaded; the orphaned entry remains and is inert
	// because the toggle path requires story existence.
	if _, err := store.Get(ctx, kvstore.LikeKey("u2", story.ID)); err != nil {
		t.Errorf("expected orphaned like entry to remain: %v", err)
	}
	if _, err := svc.ToggleLike(ctx, "u2", story.ID); !errors.Is(err, model.ErrStoryNotFound) {
		t.Errorf("toggle on deleted story should be NotFound, got: %v", err)
	}
}

// =============================================================================
// LIKE TOGGLE TESTS
// =============================================================================

func TestStoryService_ToggleLike_IsAnInvolution(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoryFixture()
	story := createTestStory(t, svc, "u1", "Toggleable")

	first, err := svc.ToggleLike(ctx, "u2", story.ID)
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if !first.Liked || first.Likes != 1 {
		t.Errorf("first toggle = %+v, want liked=true likes=1", first)
	}

	second, err := svc.ToggleLike(ctx, "u2", story.ID)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if second.Liked || second.Likes != 0 {
		t.Errorf("second toggle = %+v, want liked=false likes=0", second)
	}

	// Three toggles land in the same state as one.
	third, err := svc.ToggleLike(ctx, "u2", story.ID)
	if err != nil {
		t.Fatalf("third toggle failed: %v", err)
	}
	if !third.Liked || third.Likes != 1 {
		t.Errorf("third toggle = %+v, want liked=true likes=1", third)
	}
}

func TestStoryService_ToggleLike_NeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newStoryFixture()
	story := createTestStory(t, svc, "u1", "Undercounted")

	// Seed a stale like flag with no matching count, then untoggle.
	like, _ := json.Marshal(model.Like{StoryID: story.ID, UserID: "u2"})
	if err := store.Set(ctx, kvstore.LikeKey("u2", story.ID), like); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	result, err := svc.ToggleLike(ctx, "u2", story.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if result.Likes != 0 {
		t.Errorf("likes = %d, must floor at 0", result.Likes)
	}
}

func TestStoryService_ToggleLike_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoryFixture()
	pub := &mockPublisher{}
	svc.SetPublisher(pub)

	story := createTestStory(t, svc, "u1", "Observed")

	svc.ToggleLike(ctx, "u2", story.ID)
	svc.ToggleLike(ctx, "u2", story.ID)

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	if pub.events[0].Type != queue.EventStoryLiked || pub.events[1].Type != queue.EventStoryUnliked {
		t.Errorf("event types = %s,%s want liked,unliked", pub.events[0].Type, pub.events[1].Type)
	}
	if pub.events[0].AuthorID != "u1" || pub.events[0].UserID != "u2" {
		t.Errorf("event = %+v, want author u1 user u2", pub.events[0])
	}
}

func TestStoryService_ToggleLike_PublishFailureIsBestEffort(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoryFixture()
	svc.SetPublisher(&mockPublisher{err: errors.New("stream down")})

	story := createTestStory(t, svc, "u1", "Resilient")

	result, err := svc.ToggleLike(ctx, "u2", story.ID)
	if err != nil {
		t.Fatalf("toggle must succeed despite publish failure: %v", err)
	}
	if !result.Liked || result.Likes != 1 {
		t.Errorf("result = %+v, want liked=true likes=1", result)
	}
}

// =============================================================================
// LIST TESTS
// =============================================================================

func TestStoryService_ListByAuthorFilters(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newStoryFixture()
	createTestStory(t, svc, "u1", "Mine 1")
	createTestStory(t, svc, "u1", "Mine 2")
	createTestStory(t, svc, "u2", "Theirs")

	mine, err := svc.ListByAuthor(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 stories for u1, got %d", len(mine))
	}
	for _, s := range mine {
		if s.AuthorID != "u1" {
			t.Errorf("story %s has authorId %q", s.ID, s.AuthorID)
		}
	}

	all, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 stories total, got %d", len(all))
	}
}
