package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the like stream
const (
	EventStoryLiked   = "story_liked"
	EventStoryUnliked = "story_unliked"
)

// Stream names
const (
	StreamLikes = "stream:likes"
)

// Consumer group name for like workers
const (
	ConsumerGroupLikes = "like_workers"
)

// LikeEvent represents a like-toggle outcome published to the like stream.
// The worker folds these into the author profile's totalLikes counter.
type LikeEvent struct {
	Type      string `json:"type"`      // EventStoryLiked or EventStoryUnliked
	Timestamp int64  `json:"timestamp"` // Unix timestamp when the toggle happened

	StoryID  string `json:"story_id"`
	AuthorID string `json:"author_id"` // story owner whose totalLikes changes
	UserID   string `json:"user_id"`   // user who toggled
}

// NewStoryLikedEvent creates an event for a toggle that set the like flag.
func NewStoryLikedEvent(storyID, authorID, userID string) LikeEvent {
	return LikeEvent{
		Type:      EventStoryLiked,
		Timestamp: time.Now().Unix(),
		StoryID:   storyID,
		AuthorID:  authorID,
		UserID:    userID,
	}
}

// NewStoryUnlikedEvent creates an event for a toggle that cleared the like flag.
func NewStoryUnlikedEvent(storyID, authorID, userID string) LikeEvent {
	return LikeEvent{
		Type:      EventStoryUnliked,
		Timestamp: time.Now().Unix(),
		StoryID:   storyID,
		AuthorID:  authorID,
		UserID:    userID,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so we serialize to JSON in a "data" field.
func (e LikeEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseLikeEvent parses a LikeEvent from Redis stream message values.
func ParseLikeEvent(values map[string]interface{}) (LikeEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return LikeEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event LikeEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return LikeEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
