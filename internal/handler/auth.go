package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fictionverse/internal/httputil"
	"fictionverse/internal/model"
	"fictionverse/internal/service"
	"fictionverse/internal/transport/http/middleware"
)

// AuthHandler groups signup and profile endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	profileService *service.ProfileService
}

func NewAuthHandler(authService *service.AuthService, profileService *service.ProfileService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		profileService: profileService,
	}
}

// Signup handles POST /auth/signup
// Creates a confirmed account plus its initial profile and preferences.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.DisplayName == "" || req.Username == "" {
		httputil.WriteBadRequest(w, "Missing required fields: email, password, displayName, username")
		return
	}

	user, err := h.authService.Signup(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			httputil.WriteBadRequest(w, "Username already taken")
			return
		}
		log.Printf("[ERROR] Signup handler: username=%s err=%v", req.Username, err)
		httputil.WriteInternalError(w, "Internal server error during signup")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"user":    user,
		"message": "User created successfully",
	})
}

// GetProfile handles GET /auth/profile
// Returns the caller's profile, materializing it on first sight.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Unauthorized")
		return
	}

	profile, err := h.profileService.GetOrCreate(r.Context(), user)
	if err != nil {
		log.Printf("[ERROR] Get profile handler: user=%s err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Internal server error while fetching profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
	})
}

// UpdateProfile handles PUT /auth/profile
// Shallow-merges the request body into the stored profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
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

	profile, err := h.profileService.Update(r.Context(), user.ID, patch)
	if err != nil {
		if errors.Is(err, model.ErrProfileNotFound) {
			httputil.WriteNotFound(w, "Profile not found")
			return
		}
		log.Printf("[ERROR] Update profile handler: user=%s err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to update profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"profile": profile,
	})
}
