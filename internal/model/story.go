package model

import (
	"errors"
	"time"
)

// Story types
const (
	StoryTypeOriginal = "original"
	StoryTypeInspired = "inspired"
)

// Story statuses
const (
	StoryStatusDraft     = "draft"
	StoryStatusPublished = "published"
)

// Chapter is a single ordered chapter of a story.
type Chapter struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Story represents a story stored under story:<id>.
// ID and AuthorID are set at creation and immutable; Author is a display-name
// snapshot taken from the author's profile at creation time.
type Story struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Universe    string    `json:"universe,omitempty"`
	Tags        []string  `json:"tags"`
	Chapters    []Chapter `json:"chapters"`
	Likes       int       `json:"likes"`
	Views       int       `json:"views"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateStoryRequest is the request body for creating a story.
// Server-controlled fields (id, authorId, author, likes, views, timestamps)
// are not accepted from the caller.
type CreateStoryRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Universe    string    `json:"universe"`
	Tags        []string  `json:"tags"`
	Chapters    []Chapter `json:"chapters"`
	Status      string    `json:"status"`
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

var (
	// ErrStoryNotFound is returned when a story cannot be found
	ErrStoryNotFound = errors.New("story not found")

	// ErrNotStoryOwner is returned when a caller targets a story they do not own
	ErrNotStoryOwner = errors.New("not the owner of this story")

	// ErrInvalidStoryType is returned for a type outside original|inspired
	ErrInvalidStoryType = errors.New("invalid story type")

	// ErrUniverseRequired is returned when an inspired story omits its universe
	ErrUniverseRequired = errors.New("universe is required for inspired stories")
)
