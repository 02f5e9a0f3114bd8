package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellhq/inkwell/internal/model"
	"github.com/inkwellhq/inkwell/internal/store"
)

const defaultSubscriberPageSize = 20

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// NewsletterHandler serves the public subscribe/unsubscribe endpoints and the
// admin subscriber management surface.
type NewsletterHandler struct {
	store *store.Store
}

// NewNewsletterHandler creates a new NewsletterHandler.
func NewNewsletterHandler(st *store.Store) *NewsletterHandler {
	return &NewsletterHandler{store: st}
}

type subscribeRequest struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

// Subscribe adds an email to the newsletter list. Previously unsubscribed or
// bounced addresses are reactivated in place; an active address is a no-op.
// POST /api/public/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(email) {
		writeError(w, http.StatusBadRequest, "Please enter a valid email address")
		return
	}

	existing, err := h.store.GetSubscriberByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "Server error. Please try again later.")
		return
	}

	if existing != nil {
		if existing.Status == model.SubscriberStatusActive {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"message":    "You are already subscribed to our newsletter!",
				"subscriber": existing,
			})
			return
		}

		message := "You have been resubscribed to our newsletter."
		if existing.Status == model.SubscriberStatusUnsubscribed {
			message = "Welcome back! You have been resubscribed to our newsletter."
		}
		existing.Status = model.SubscriberStatusActive
		existing.UnsubscribedAt = nil
		existing.SubscribedAt = time.Now().UTC()
		if err := h.store.UpdateSubscriber(r.Context(), existing); err != nil {
			writeError(w, http.StatusInternalServerError, "Server error. Please try again later.")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":    message,
			"subscriber": existing,
		})
		return
	}

	source := req.Source
	if source == "" {
		source = "website"
	}
	sub := &model.Subscriber{
		Email:        email,
		Status:       model.SubscriberStatusActive,
		Source:       source,
		SubscribedAt: time.Now().UTC(),
	}
	if err := h.store.CreateSubscriber(r.Context(), sub); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "This email is already subscribed to our newsletter.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error. Please try again later.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Thank you for subscribing to our newsletter!",
		"subscriber": sub,
	})
}

type unsubscribeRequest struct {
	Email string `json:"email"`
}

// Unsubscribe removes an email from the active list.
// POST /api/public/newsletter/unsubscribe
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	sub, err := h.store.GetSubscriberByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Email not found in our subscriber list.")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error. Please try again later.")
		return
	}

	now := time.Now().UTC()
	sub.Status = model.SubscriberStatusUnsubscribed
	sub.UnsubscribedAt = &now
	if err := h.store.UpdateSubscriber(r.Context(), sub); err != nil {
		writeError(w, http.StatusInternalServerError, "Server error. Please try again later.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "You have been unsubscribed from our newsletter.",
	})
}

// ListSubscribers returns a page of subscribers for the admin dashboard, with
// optional email search and status filter.
// GET /api/newsletter/subscribers
func (h *NewsletterHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	page := clampInt(queryInt(r, "page", 1), 1, 1<<20)
	limit := clampInt(queryInt(r, "limit", defaultSubscriberPageSize), 1, 100)

	status := queryString(r, "status")
	if status == "all" {
		status = ""
	}

	filter := store.SubscriberFilter{
		Search: queryString(r, "search"),
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	subs, total, err := h.store.ListSubscribers(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"subscribers": subs,
		"pagination":  model.NewPagination(page, limit, len(subs), total),
	})
}

// Stats summarizes the newsletter list by status.
// GET /api/newsletter/subscribers/stats
func (h *NewsletterHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.SubscriberStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}

// UnsubscribeByID marks a subscriber unsubscribed from the admin dashboard.
// PUT /api/newsletter/subscribers/{id}/unsubscribe
func (h *NewsletterHandler) UnsubscribeByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subscriber id")
		return
	}

	sub, err := h.store.GetSubscriberByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Subscriber not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	now := time.Now().UTC()
	sub.Status = model.SubscriberStatusUnsubscribed
	sub.UnsubscribedAt = &now
	if err := h.store.UpdateSubscriber(r.Context(), sub); err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Subscriber unsubscribed successfully",
		"subscriber": sub,
	})
}

// DeleteSubscriber removes a subscriber entirely.
// DELETE /api/newsletter/subscribers/{id}
func (h *NewsletterHandler) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid subscriber id")
		return
	}
	if err := h.store.DeleteSubscriber(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Subscriber not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Subscriber deleted successfully"})
}
