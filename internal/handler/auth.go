package handler

import (
	"errors"
	"net/http"

	"github.com/inkwellhq/inkwell/internal/server/middleware"
	"github.com/inkwellhq/inkwell/internal/service"
	"github.com/inkwellhq/inkwell/internal/store"
)

// AuthHandler serves registration, device-trust login, session management,
// and admin profile endpoints.
type AuthHandler struct {
	store         *store.Store
	authSvc       *service.AuthService
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies sets the Secure
// attribute on session cookies and should be on in production.
func NewAuthHandler(st *store.Store, authSvc *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		store:         st,
		authSvc:       authSvc,
		secureCookies: secureCookies,
	}
}

// setSessionCookie issues the session transport credential: http-only,
// same-site lax, API-wide path, lifetime matching the token's expiry.
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(service.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie removes the session cookie using the same attributes it
// was set with.
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Device   string `json:"device"`
}

// Register creates a new admin account, gated by the signup setting.
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	admin, secretKey, err := h.authSvc.Register(r.Context(), service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Device:    req.Device,
		IPAddress: clientIP(r),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignupDisabled):
			writeError(w, http.StatusForbidden,
				"Admin signup is currently disabled. Please contact an existing administrator.")
		case errors.Is(err, service.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "Admin with this email already exists")
		default:
			writeError(w, http.StatusInternalServerError, "Server error during registration")
		}
		return
	}

	token, err := h.authSvc.IssueToken(admin.ID, admin.Email, service.SessionTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error during registration")
		return
	}
	h.setSessionCookie(w, token)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Admin registered successfully",
		"secretKey": secretKey, // returned only once, at registration
		"admin":     admin.Summary(),
	})
}

type loginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Device    string `json:"device"`
	SecretKey string `json:"secretKey"`
}

// Login authenticates an admin with the device-trust flow.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	// Device info is mandatory for every login, not just new-device ones.
	if req.Device == "" {
		writeError(w, http.StatusBadRequest, "Device information is required for security verification")
		return
	}

	admin, err := h.authSvc.Login(r.Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		Device:    req.Device,
		IPAddress: clientIP(r),
		SecretKey: req.SecretKey,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, service.ErrSecretKeyRequired):
			writeSecretKeyChallenge(w,
				"New device detected. Please provide your secret key to verify this device.")
		case errors.Is(err, service.ErrInvalidSecretKey):
			writeError(w, http.StatusUnauthorized, "Invalid secret key")
		default:
			writeError(w, http.StatusInternalServerError, "Server error during login")
		}
		return
	}

	token, err := h.authSvc.IssueToken(admin.ID, admin.Email, service.SessionTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error during login")
		return
	}
	h.setSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"admin":   admin.Summary(),
	})
}

// Logout clears the session cookie. Tokens are stateless, so a copy held
// elsewhere remains valid until its natural expiry.
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Me returns the authenticated admin, trusted devices included, credential
// fields excluded.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdmin(r.Context())

	devices, err := h.store.ListTrustedDevices(r.Context(), admin.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	admin.TrustedDevices = devices

	writeJSON(w, http.StatusOK, map[string]interface{}{"admin": admin})
}

// adminListEntry is the author-selection shape: identity and picture only.
type adminListEntry struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic"`
}

// ListAdmins returns all admins sorted by name, for selecting an author.
// GET /api/auth/all
func (h *AuthHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.store.ListAdmins(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	entries := make([]adminListEntry, 0, len(admins))
	for _, a := range admins {
		entries = append(entries, adminListEntry{
			ID:         a.ID,
			Name:       a.Name,
			Email:      a.Email,
			ProfilePic: a.ProfilePic,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"admins": entries})
}

type profileRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	ProfilePic *string `json:"profilePic"`
	Password   string  `json:"password"`
}

// UpdateProfile updates the authenticated admin's name, email, profile
// picture, and optionally password.
// PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Re-fetch the full record: the context admin has credential fields
	// cleared and updating it directly would wipe the stored hash.
	admin, err := h.store.GetAdminByID(r.Context(), middleware.GetAdmin(r.Context()).ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Admin not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if req.Name != "" {
		admin.Name = req.Name
	}
	if req.Email != "" && req.Email != admin.Email {
		inUse, err := h.store.AdminEmailInUse(r.Context(), req.Email, admin.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}
		if inUse {
			writeError(w, http.StatusBadRequest, "Email already in use")
			return
		}
		admin.Email = req.Email
	}
	if req.ProfilePic != nil {
		admin.ProfilePic = *req.ProfilePic
	}
	if req.Password != "" {
		hash, err := service.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}
		admin.PasswordHash = hash
	}

	if err := h.store.UpdateAdmin(r.Context(), admin); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Email already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	updated := *admin
	updated.PasswordHash = ""
	updated.SecretKey = ""
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"admin":   &updated,
	})
}
