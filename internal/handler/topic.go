package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellhq/inkwell/internal/model"
	"github.com/inkwellhq/inkwell/internal/store"
)

// TopicHandler serves the topic CRUD endpoints and the public topic listing.
type TopicHandler struct {
	store *store.Store
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(st *store.Store) *TopicHandler {
	return &TopicHandler{store: st}
}

// List returns all topics for the admin dashboard.
// GET /api/topics
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	topics, err := h.store.ListTopics(r.Context(), false)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"topics": topics})
}

// ListPublic returns active topics only.
// GET /api/public/topics
func (h *TopicHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	topics, err := h.store.ListTopics(r.Context(), true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"topics": topics})
}

// Get returns a single topic.
// GET /api/topics/{id}
func (h *TopicHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid topic id")
		return
	}
	topic, err := h.store.GetTopicByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Topic not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"topic": topic})
}

type topicRequest struct {
	Name     string `json:"name"`
	Image    *string `json:"image"`
	IsActive *bool  `json:"isActive"`
}

// Create adds a new topic; the slug is derived from the name.
// POST /api/topics
func (h *TopicHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	topic := &model.Topic{
		Name:     req.Name,
		Slug:     slugify(req.Name),
		IsActive: true,
	}
	if req.Image != nil {
		topic.Image = *req.Image
	}
	if req.IsActive != nil {
		topic.IsActive = *req.IsActive
	}

	if err := h.store.CreateTopic(r.Context(), topic); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Topic with this name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Topic created successfully",
		"topic":   topic,
	})
}

// Update modifies a topic; renaming regenerates the slug.
// PUT /api/topics/{id}
func (h *TopicHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid topic id")
		return
	}

	var req topicRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	topic, err := h.store.GetTopicByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Topic not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if req.Name != "" {
		topic.Name = req.Name
		topic.Slug = slugify(req.Name)
	}
	if req.Image != nil {
		topic.Image = *req.Image
	}
	if req.IsActive != nil {
		topic.IsActive = *req.IsActive
	}

	if err := h.store.UpdateTopic(r.Context(), topic); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Topic with this name already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Topic updated successfully",
		"topic":   topic,
	})
}

// Delete removes a topic. Articles keep existing with a null topic.
// DELETE /api/topics/{id}
func (h *TopicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid topic id")
		return
	}
	if err := h.store.DeleteTopic(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Topic not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Topic deleted successfully"})
}
