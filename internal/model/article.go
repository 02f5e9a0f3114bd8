package model

import "time"

// Article statuses.
const (
	ArticleStatusDraft     = "draft"
	ArticleStatusPublished = "published"
)

// Article is a piece of written content. Slug is derived from the title and
// unique across articles. PublishedAt is stamped the first time the article
// transitions to published and never reset.
type Article struct {
	ID            int64      `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Slug          string     `json:"slug" db:"slug"`
	Content       string     `json:"content,omitempty" db:"content"`
	Excerpt       string     `json:"excerpt" db:"excerpt"`
	Author        string     `json:"author" db:"author"`
	WrittenBy     string     `json:"writtenBy" db:"written_by"`
	TopicID       *int64     `json:"-" db:"topic_id"`
	Status        string     `json:"status" db:"status"`
	FeaturedImage string     `json:"featuredImage" db:"featured_image"`
	Views         int64      `json:"views" db:"views"`
	PublishedAt   *time.Time `json:"publishedAt" db:"published_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	// Topic is resolved from TopicID when listing or fetching articles.
	Topic *TopicRef `json:"topic" db:"-"`
}
