package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"fictionverse/internal/httputil"
	"fictionverse/internal/service"
	"fictionverse/internal/transport/http/middleware"
)

// PreferencesHandler exposes the per-user preference endpoints.
type PreferencesHandler struct {
	preferencesService *service.PreferencesService
}

func NewPreferencesHandler(preferencesService *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{
		preferencesService: preferencesService,
	}
}

// Get handles GET /preferences
// Returns stored preferences, or the defaults when nothing is stored yet.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Unauthorized")
		return
	}

	prefs, err := h.preferencesService.Get(r.Context(), user.ID)
	if err != nil {
		log.Printf("[ERROR] Get preferences handler: user=%s err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to fetch preferences")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"preferences": prefs,
	})
}

// Update handles PUT /preferences
// Shallow-merges the request body into the stored preferences.
func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var patch service.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	prefs, err := h.preferencesService.Update(r.Context(), user.ID, patch)
	if err != nil {
		log.Printf("[ERROR] Update preferences handler: user=%s err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to update preferences")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"preferences": prefs,
	})
}
