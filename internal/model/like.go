package model

import "time"

// Like is a presence/absence toggle flag stored under like:<userId>:<storyId>.
// Its existence means "liked"; the Story.Likes counter is the aggregate source
// of truth, adjusted in lockstep with this flag.
type Like struct {
	StoryID   string    `json:"storyId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}
