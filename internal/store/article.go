package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/inkwellhq/inkwell/internal/model"
)

// articleRow maps an article joined with its optional topic for sqlx scanning.
// model.Article carries the resolved topic as a nested struct that doesn't map
// directly to columns.
type articleRow struct {
	model.Article
	TopicName  *string `db:"topic_name"`
	TopicSlug  *string `db:"topic_slug"`
	TopicImage *string `db:"topic_image"`
}

func (r articleRow) toModel() model.Article {
	a := r.Article
	if a.TopicID != nil && r.TopicName != nil {
		a.Topic = &model.TopicRef{
			ID:   *a.TopicID,
			Name: *r.TopicName,
			Slug: derefString(r.TopicSlug),
		}
		a.Topic.Image = derefString(r.TopicImage)
	}
	return a
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

const articleJoin = `
	SELECT a.*, t.name AS topic_name, t.slug AS topic_slug, t.image AS topic_image
	FROM articles a
	LEFT JOIN topics t ON t.id = a.topic_id`

// articleListColumns excludes content: list responses never carry the full
// article body.
const articleListJoin = `
	SELECT a.id, a.title, a.slug, '' AS content, a.excerpt, a.author, a.written_by,
	       a.topic_id, a.status, a.featured_image, a.views, a.published_at,
	       a.created_at, a.updated_at,
	       t.name AS topic_name, t.slug AS topic_slug, t.image AS topic_image
	FROM articles a
	LEFT JOIN topics t ON t.id = a.topic_id`

// CreateArticle inserts a new article. Slug must be unique.
func (s *Store) CreateArticle(ctx context.Context, article *model.Article) error {
	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now

	const q = `INSERT INTO articles
		(title, slug, content, excerpt, author, written_by, topic_id, status,
		 featured_image, views, published_at, created_at, updated_at)
		VALUES
		(:title, :slug, :content, :excerpt, :author, :written_by, :topic_id, :status,
		 :featured_image, :views, :published_at, :created_at, :updated_at)`

	result, err := s.db.NamedExecContext(ctx, q, article)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert article: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get article id: %w", err)
	}
	article.ID = id
	return nil
}

// GetArticleByID returns an article with its topic resolved.
func (s *Store) GetArticleByID(ctx context.Context, id int64) (*model.Article, error) {
	var row articleRow
	if err := s.db.GetContext(ctx, &row, articleJoin+" WHERE a.id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	a := row.toModel()
	return &a, nil
}

// GetPublishedArticleBySlug returns a published article by its slug. Draft
// articles are invisible to the public surface.
func (s *Store) GetPublishedArticleBySlug(ctx context.Context, slug string) (*model.Article, error) {
	var row articleRow
	err := s.db.GetContext(ctx, &row, articleJoin+" WHERE a.slug = ? AND a.status = ?",
		slug, model.ArticleStatusPublished)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get article by slug: %w", err)
	}
	a := row.toModel()
	return &a, nil
}

// SlugExists reports whether any article already uses slug.
func (s *Store) SlugExists(ctx context.Context, slug string, exceptID int64) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM articles WHERE slug = ? AND id != ?", slug, exceptID); err != nil {
		return false, fmt.Errorf("check article slug: %w", err)
	}
	return count > 0, nil
}

// ListArticles returns all articles newest-first, for the admin dashboard.
func (s *Store) ListArticles(ctx context.Context) ([]model.Article, error) {
	var rows []articleRow
	if err := s.db.SelectContext(ctx, &rows, articleJoin+" ORDER BY a.created_at DESC"); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	articles := make([]model.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, r.toModel())
	}
	return articles, nil
}

// PublishedArticleFilter narrows the public article listing.
type PublishedArticleFilter struct {
	Search  string
	TopicID int64 // 0 means any topic
	Limit   int
	Offset  int
}

// ListPublishedArticles returns a page of published articles, newest-published
// first, with the full content column omitted. The second return value is the
// total number of matches before paging.
func (s *Store) ListPublishedArticles(ctx context.Context, f PublishedArticleFilter) ([]model.Article, int64, error) {
	where := []string{"a.status = ?"}
	args := []interface{}{model.ArticleStatusPublished}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where = append(where, "(a.title LIKE ? OR a.excerpt LIKE ? OR a.content LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if f.TopicID != 0 {
		where = append(where, "a.topic_id = ?")
		args = append(args, f.TopicID)
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	var total int64
	if err := s.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM articles a"+cond, args...); err != nil {
		return nil, 0, fmt.Errorf("count published articles: %w", err)
	}

	q := articleListJoin + cond +
		" ORDER BY a.published_at DESC, a.created_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	var rows []articleRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, fmt.Errorf("list published articles: %w", err)
	}
	articles := make([]model.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, r.toModel())
	}
	return articles, total, nil
}

// ListRecentPublishedArticles returns the newest published articles up to
// limit, content omitted. Used by the public hero section.
func (s *Store) ListRecentPublishedArticles(ctx context.Context, limit int) ([]model.Article, error) {
	var rows []articleRow
	err := s.db.SelectContext(ctx, &rows,
		articleListJoin+" WHERE a.status = ? ORDER BY a.published_at DESC, a.created_at DESC LIMIT ?",
		model.ArticleStatusPublished, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent articles: %w", err)
	}
	articles := make([]model.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, r.toModel())
	}
	return articles, nil
}

// UpdateArticle persists changes to an article.
func (s *Store) UpdateArticle(ctx context.Context, article *model.Article) error {
	article.UpdatedAt = time.Now().UTC()

	const q = `UPDATE articles SET
		title = :title, slug = :slug, content = :content, excerpt = :excerpt,
		author = :author, written_by = :written_by, topic_id = :topic_id,
		status = :status, featured_image = :featured_image,
		published_at = :published_at, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, article)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update article: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update article rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteArticle removes an article.
func (s *Store) DeleteArticle(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete article rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementArticleViews bumps an article's view counter by one. The update is
// atomic in the store; concurrent reads may each count.
func (s *Store) IncrementArticleViews(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE articles SET views = views + 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("increment article views: %w", err)
	}
	return nil
}
