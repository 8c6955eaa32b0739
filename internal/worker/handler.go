package worker

import (
	"context"
	"fmt"
	"log"

	"fictionverse/internal/queue"
)

// LikeCountAdjuster updates a profile's denormalized totalLikes counter.
// Abstracts the service layer so the worker doesn't depend on it directly.
type LikeCountAdjuster interface {
	// AdjustTotalLikes applies delta to the user's totalLikes, floored at 0.
	AdjustTotalLikes(ctx context.Context, userID string, delta int) error
}

// Handler processes like events from the queue, folding each toggle into the
// story author's aggregate like total.
type Handler struct {
	adjuster LikeCountAdjuster
}

// NewHandler creates a new event handler.
func NewHandler(adjuster LikeCountAdjuster) *Handler {
	return &Handler{adjuster: adjuster}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.LikeEvent) error {
	var err error

	switch event.Type {
	case queue.EventStoryLiked:
		err = h.adjuster.AdjustTotalLikes(ctx, event.AuthorID, 1)
	case queue.EventStoryUnliked:
		err = h.adjuster.AdjustTotalLikes(ctx, event.AuthorID, -1)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s author=%s err=%v",
			event.Type, event.AuthorID, err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s story=%s author=%s",
		event.Type, event.StoryID, event.AuthorID)
	return nil
}
