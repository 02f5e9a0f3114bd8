package model

import "time"

// Topic categorizes articles. Name and slug are unique across topics.
type Topic struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	Image     string    `json:"image" db:"image"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// TopicRef is the compact topic shape embedded in article responses.
type TopicRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image"`
}

// Ref returns the topic's compact reference shape.
func (t *Topic) Ref() TopicRef {
	return TopicRef{ID: t.ID, Name: t.Name, Slug: t.Slug, Image: t.Image}
}
