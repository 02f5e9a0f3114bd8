package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwellhq/inkwell/internal/model"
	"github.com/inkwellhq/inkwell/internal/store"
)

const defaultPublicPageSize = 12

// ArticleHandler serves article CRUD for the admin dashboard and the public
// published-article surface.
type ArticleHandler struct {
	store *store.Store
}

// NewArticleHandler creates a new ArticleHandler.
func NewArticleHandler(st *store.Store) *ArticleHandler {
	return &ArticleHandler{store: st}
}

// List returns all articles newest-first.
// GET /api/articles
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := h.store.ListArticles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"articles": articles})
}

// Get returns a single article by ID.
// GET /api/articles/{id}
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid article id")
		return
	}
	article, err := h.store.GetArticleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"article": article})
}

type articleRequest struct {
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Excerpt       *string `json:"excerpt"`
	Author        *string `json:"author"`
	WrittenBy     *string `json:"writtenBy"`
	TopicID       *int64  `json:"topicId"`
	Status        *string `json:"status"`
	FeaturedImage *string `json:"featuredImage"`
}

// Create adds a new article. The slug is derived from the title and must be
// unique; publishing immediately stamps publishedAt.
// POST /api/articles
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	slug := slugify(req.Title)
	exists, err := h.store.SlugExists(r.Context(), slug, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "Article with this title already exists")
		return
	}

	article := &model.Article{
		Title:   req.Title,
		Slug:    slug,
		Content: req.Content,
		Status:  model.ArticleStatusDraft,
	}
	if req.Excerpt != nil {
		article.Excerpt = *req.Excerpt
	}
	if req.Author != nil {
		article.Author = *req.Author
	}
	if req.WrittenBy != nil {
		article.WrittenBy = *req.WrittenBy
	}
	if req.TopicID != nil && *req.TopicID != 0 {
		article.TopicID = req.TopicID
	}
	if req.Status != nil {
		article.Status = *req.Status
	}
	if req.FeaturedImage != nil {
		article.FeaturedImage = *req.FeaturedImage
	}
	if article.Status == model.ArticleStatusPublished {
		now := time.Now().UTC()
		article.PublishedAt = &now
	}

	if err := h.store.CreateArticle(r.Context(), article); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Article with this title already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Article created successfully",
		"article": article,
	})
}

// Update modifies an article. Retitling regenerates the slug; the first
// transition to published stamps publishedAt.
// PUT /api/articles/{id}
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid article id")
		return
	}

	var req articleRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	article, err := h.store.GetArticleByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if req.Title != "" && req.Title != article.Title {
		slug := slugify(req.Title)
		exists, err := h.store.SlugExists(r.Context(), slug, article.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Server error")
			return
		}
		if exists {
			writeError(w, http.StatusBadRequest, "Article with this title already exists")
			return
		}
		article.Title = req.Title
		article.Slug = slug
	}
	if req.Content != "" {
		article.Content = req.Content
	}
	if req.Excerpt != nil {
		article.Excerpt = *req.Excerpt
	}
	if req.Author != nil {
		article.Author = *req.Author
	}
	if req.WrittenBy != nil {
		article.WrittenBy = *req.WrittenBy
	}
	if req.TopicID != nil {
		if *req.TopicID == 0 {
			article.TopicID = nil
		} else {
			article.TopicID = req.TopicID
		}
	}
	if req.Status != nil {
		article.Status = *req.Status
		if article.Status == model.ArticleStatusPublished && article.PublishedAt == nil {
			now := time.Now().UTC()
			article.PublishedAt = &now
		}
	}
	if req.FeaturedImage != nil {
		article.FeaturedImage = *req.FeaturedImage
	}

	if err := h.store.UpdateArticle(r.Context(), article); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "Article with this title already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	updated, err := h.store.GetArticleByID(r.Context(), article.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Article updated successfully",
		"article": updated,
	})
}

// Delete removes an article.
// DELETE /api/articles/{id}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid article id")
		return
	}
	if err := h.store.DeleteArticle(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Article deleted successfully"})
}

// ListPublic returns a page of published articles, optionally filtered by a
// search term and topic. Full content is omitted from the listing.
// GET /api/public/articles
func (h *ArticleHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	page := clampInt(queryInt(r, "page", 1), 1, 1<<20)
	limit := clampInt(queryInt(r, "limit", defaultPublicPageSize), 1, 100)

	filter := store.PublishedArticleFilter{
		Search:  queryString(r, "search"),
		TopicID: int64(queryInt(r, "topic", 0)),
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}

	articles, total, err := h.store.ListPublishedArticles(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"articles":   articles,
		"pagination": model.NewPagination(page, limit, len(articles), total),
	})
}

// GetPublic returns a published article by slug and counts the view.
// GET /api/public/articles/{slug}
func (h *ArticleHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	article, err := h.store.GetPublishedArticleBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	if err := h.store.IncrementArticleViews(r.Context(), article.ID); err == nil {
		article.Views++
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"article": article})
}

// ListRecent returns the newest published articles for the hero section.
// GET /api/public/articles/recent
func (h *ArticleHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit := clampInt(queryInt(r, "limit", 6), 1, 50)

	articles, err := h.store.ListRecentPublishedArticles(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"articles": articles})
}
