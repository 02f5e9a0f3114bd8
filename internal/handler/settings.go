package handler

import (
	"net/http"

	"github.com/inkwellhq/inkwell/internal/store"
)

// SettingsHandler serves the site settings singleton, including the signup
// gate.
type SettingsHandler struct {
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(st *store.Store) *SettingsHandler {
	return &SettingsHandler{store: st}
}

// SignupStatus reports whether admin registration is open. Public, used by
// the auth page before showing the signup form.
// GET /api/settings/signup-status
func (h *SettingsHandler) SignupStatus(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		// The gate defaults open; report that rather than failing the page.
		writeJSON(w, http.StatusOK, map[string]bool{"allowAdminSignup": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"allowAdminSignup": settings.AllowAdminSignup})
}

// Get returns the settings singleton.
// GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"settings": settings})
}

type settingsRequest struct {
	AllowAdminSignup *bool `json:"allowAdminSignup"`
}

// Update changes the signup gate.
// PUT /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if req.AllowAdminSignup != nil {
		settings.AllowAdminSignup = *req.AllowAdminSignup
		if err := h.store.UpdateSettings(r.Context(), settings); err != nil {
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Settings updated successfully",
		"settings": settings,
	})
}
