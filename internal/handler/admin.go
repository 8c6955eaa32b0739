package handler

import (
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"fictionverse/internal/httputil"
	"fictionverse/internal/service"
)

// AdminHandler exposes destructive operator endpoints. All of them are
// disabled (404) unless an operator token hash is configured, and each
// request must present the matching token in X-Admin-Token.
type AdminHandler struct {
	adminService *service.AdminService
	tokenHash    string
}

func NewAdminHandler(adminService *service.AdminService, tokenHash string) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		tokenHash:    tokenHash,
	}
}

func (h *AdminHandler) authorize(w http.ResponseWriter, r *http.Request) bool {
	if h.tokenHash == "" {
		httputil.WriteNotFound(w, "Not found")
		return false
	}

	token := r.Header.Get("X-Admin-Token")
	if err := bcrypt.CompareHashAndPassword([]byte(h.tokenHash), []byte(token)); err != nil {
		httputil.WriteForbidden(w, "Invalid admin token")
		return false
	}
	return true
}

// ClearDatabase handles POST /admin/clear-database
// Deletes every auth user and every stored record, then reports counts.
func (h *AdminHandler) ClearDatabase(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r) {
		return
	}

	result, err := h.adminService.ClearDatabase(r.Context())
	if err != nil {
		log.Printf("[ERROR] Clear database handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to clear database")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Database and auth users cleared successfully",
		"deleted": result,
	})
}
