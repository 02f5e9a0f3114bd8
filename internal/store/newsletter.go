package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/inkwellhq/inkwell/internal/model"
)

// CreateSubscriber inserts a new newsletter subscriber.
func (s *Store) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	const q = `INSERT INTO subscribers
		(email, status, source, subscribed_at, unsubscribed_at, created_at, updated_at)
		VALUES
		(:email, :status, :source, :subscribed_at, :unsubscribed_at, :created_at, :updated_at)`

	result, err := s.db.NamedExecContext(ctx, q, sub)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get subscriber id: %w", err)
	}
	sub.ID = id
	return nil
}

// GetSubscriberByEmail returns a subscriber by (lowercased) email.
func (s *Store) GetSubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	var sub model.Subscriber
	if err := s.db.GetContext(ctx, &sub, "SELECT * FROM subscribers WHERE email = ?", email); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subscriber by email: %w", err)
	}
	return &sub, nil
}

// GetSubscriberByID returns a subscriber by ID.
func (s *Store) GetSubscriberByID(ctx context.Context, id int64) (*model.Subscriber, error) {
	var sub model.Subscriber
	if err := s.db.GetContext(ctx, &sub, "SELECT * FROM subscribers WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subscriber by id: %w", err)
	}
	return &sub, nil
}

// UpdateSubscriber persists status/source changes to a subscriber.
func (s *Store) UpdateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	sub.UpdatedAt = time.Now().UTC()

	const q = `UPDATE subscribers SET
		email = :email, status = :status, source = :source,
		subscribed_at = :subscribed_at, unsubscribed_at = :unsubscribed_at,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, sub)
	if err != nil {
		return fmt.Errorf("update subscriber: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update subscriber rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSubscriber removes a subscriber.
func (s *Store) DeleteSubscriber(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM subscribers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscriber rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SubscriberFilter narrows the admin subscriber listing.
type SubscriberFilter struct {
	Search string
	Status string // empty means all statuses
	Limit  int
	Offset int
}

// ListSubscribers returns a page of subscribers sorted by subscription date
// descending, plus the total number of matches before paging.
func (s *Store) ListSubscribers(ctx context.Context, f SubscriberFilter) ([]model.Subscriber, int64, error) {
	var where []string
	var args []interface{}

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		where = append(where, "email LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := s.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM subscribers"+cond, args...); err != nil {
		return nil, 0, fmt.Errorf("count subscribers: %w", err)
	}

	q := "SELECT * FROM subscribers" + cond + " ORDER BY subscribed_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	var subs []model.Subscriber
	if err := s.db.SelectContext(ctx, &subs, q, args...); err != nil {
		return nil, 0, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, total, nil
}

// SubscriberStats returns subscriber counts per status.
func (s *Store) SubscriberStats(ctx context.Context) (*model.SubscriberStats, error) {
	const q = `SELECT
		COUNT(*) AS total,
		COALESCE(SUM(status = 'active'), 0) AS active,
		COALESCE(SUM(status = 'unsubscribed'), 0) AS unsubscribed,
		COALESCE(SUM(status = 'bounced'), 0) AS bounced
		FROM subscribers`

	var stats model.SubscriberStats
	if err := s.db.GetContext(ctx, &stats, q); err != nil {
		return nil, fmt.Errorf("subscriber stats: %w", err)
	}
	return &stats, nil
}
