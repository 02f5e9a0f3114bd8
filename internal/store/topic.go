package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/inkwellhq/inkwell/internal/model"
)

// CreateTopic inserts a new topic. Name and slug must be unique.
func (s *Store) CreateTopic(ctx context.Context, topic *model.Topic) error {
	now := time.Now().UTC()
	topic.CreatedAt = now
	topic.UpdatedAt = now

	const q = `INSERT INTO topics (name, slug, image, is_active, created_at, updated_at)
		VALUES (:name, :slug, :image, :is_active, :created_at, :updated_at)`

	result, err := s.db.NamedExecContext(ctx, q, topic)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert topic: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get topic id: %w", err)
	}
	topic.ID = id
	return nil
}

// GetTopicByID returns a topic by ID.
func (s *Store) GetTopicByID(ctx context.Context, id int64) (*model.Topic, error) {
	var topic model.Topic
	if err := s.db.GetContext(ctx, &topic, "SELECT * FROM topics WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return &topic, nil
}

// ListTopics returns all topics sorted by name. When activeOnly is set, only
// active topics are returned (the public listing).
func (s *Store) ListTopics(ctx context.Context, activeOnly bool) ([]model.Topic, error) {
	q := "SELECT * FROM topics ORDER BY name"
	if activeOnly {
		q = "SELECT * FROM topics WHERE is_active = 1 ORDER BY name"
	}
	var topics []model.Topic
	if err := s.db.SelectContext(ctx, &topics, q); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// UpdateTopic persists changes to a topic.
func (s *Store) UpdateTopic(ctx context.Context, topic *model.Topic) error {
	topic.UpdatedAt = time.Now().UTC()

	const q = `UPDATE topics SET
		name = :name, slug = :slug, image = :image, is_active = :is_active, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, topic)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update topic: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update topic rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTopic removes a topic. Articles referencing it keep existing with a
// null topic.
func (s *Store) DeleteTopic(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM topics WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete topic rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
