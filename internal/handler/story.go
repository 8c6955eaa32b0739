package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fictionverse/internal/httputil"
	"fictionverse/internal/model"
	"fictionverse/internal/service"
	"fictionverse/internal/transport/http/middleware"
)

// StoryHandler groups the story CRUD and like endpoints.
type StoryHandler struct {
	storyService *service.StoryService
}

func NewStoryHandler(storyService *service.StoryService) *StoryHandler {
	return &StoryHandler{
		storyService: storyService,
	}
}

// List handles GET /stories
// Returns every story; no pagination, no filtering.
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	stories, err := h.storyService.ListAll(r.Context())
	if err != nil {
		log.Printf("[ERROR] List stories handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to fetch stories")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stories": stories,
	})
}

// GetByID handles GET /stories/:id
func (h *StoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "id")

	story, err := h.storyService.GetByID(r.Context(), storyID)
	if err != nil {
		if errors.Is(err, model.ErrStoryNotFound) {
			httputil.WriteNotFound(w, "Story not found")
			return
		}
		log.Printf("[ERROR] Get story handler: story=%s err=%v", storyID, err)
		httputil.WriteInternalError(w, "Failed to fetch story")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"story": story,
	})
}

// ListByAuthor handles GET /stories/user/:userId
// Public: anyone can browse an author's stories.
func (h *StoryHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, "userId")

	stories, err := h.storyService.ListByAuthor(r.Context(), authorID)
	if err != nil {
		log.Printf("[ERROR] List user stories handler: author=%s err=%v", authorID, err)
		httputil.WriteInternalError(w, "Failed to fetch user stories")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stories": stories,
	})
}

// Create handles POST /stories
func (h *StoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var req model.CreateStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	story, err := h.storyService.Create(r.Context(), user, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidStoryType):
			httputil.WriteBadRequest(w, "Story type must be 'original' or 'inspired'")
		case errors.Is(err, model.ErrUniverseRequired):
			httputil.WriteBadRequest(w, "Inspired stories must name a universe")
		default:
			log.Printf("[ERROR] Create story handler: user=%s err=%v", user.ID, err)
			httputil.WriteInternalError(w, "Failed to create story")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"story":   story,
		"message": "Story created successfully",
	})
}

// Update handles PUT /stories/:id
// Shallow-merges the request body into the stored story (owner only).
func (h *StoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Unauthorized")
		return
	}

	storyID := chi.URLParam(r, "id")

	var patch service.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	story, err := h.storyService.Update(r.Context(), user.ID, storyID, patch)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrStoryNotFound):
			httputil.WriteNotFound(w, "Story not found")
		case errors.Is(err, model.ErrNotStoryOwner):
			httputil.WriteForbidden(w, "You can only update your own stories")
		default:
			log.Printf("[ERROR] Update story handler: user=%s story=%s err=%v", user.ID, storyID, err)
			httputil.WriteInternalError(w, "Failed to update story")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"story": story,
	})
}

// Delete handles DELETE /stories/:id (owner only).
func (h *StoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Unauthorized")
		return
	}

	storyID := chi.URLParam(r, "id")

	if err := h.storyService.Delete(r.Context(), user.ID, storyID); err != nil {
		switch {
		case errors.Is(err, model.ErrStoryNotFound):
			httputil.WriteNotFound(w, "Story not found")
		case errors.Is(err, model.ErrNotStoryOwner):
			httputil.WriteForbidden(w, "You can only delete your own stories")
		default:
			log.Printf("[ERROR] Delete story handler: user=%s story=%s err=%v", user.ID, storyID, err)
			httputil.WriteInternalError(w, "Failed to delete story")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Story deleted successfully",
	})
}

// ToggleLike handles POST /stories/:id/like
// Flips the caller's like flag on the story and returns the new state.
func (h *StoryHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Unauthorized")
		return
	}

	storyID := chi.URLParam(r, "id")

	result, err := h.storyService.ToggleLike(r.Context(), user.ID, storyID)
	if err != nil {
		if errors.Is(err, model.ErrStoryNotFound) {
			httputil.WriteNotFound(w, "Story not found")
			return
		}
		log.Printf("[ERROR] Toggle like handler: user=%s story=%s err=%v", user.ID, storyID, err)
		httputil.WriteInternalError(w, "Failed to like/unlike story")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
