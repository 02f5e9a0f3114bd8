package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/inkwellhq/inkwell/internal/model"
)

// GetSettings returns the settings singleton, creating it with signup allowed
// if it does not exist yet. Every caller reads through to the store; the row
// is never cached in process so multiple server instances stay consistent.
func (s *Store) GetSettings(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	err := s.db.GetContext(ctx, &settings, "SELECT * FROM settings ORDER BY id LIMIT 1")
	if err == nil {
		return &settings, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get settings: %w", err)
	}

	now := time.Now().UTC()
	settings = model.Settings{AllowAdminSignup: true, CreatedAt: now, UpdatedAt: now}
	result, err := s.db.NamedExecContext(ctx,
		`INSERT INTO settings (allow_admin_signup, created_at, updated_at)
		 VALUES (:allow_admin_signup, :created_at, :updated_at)`, &settings)
	if err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get settings id: %w", err)
	}
	settings.ID = id
	return &settings, nil
}

// UpdateSettings persists the signup-gate flag.
func (s *Store) UpdateSettings(ctx context.Context, settings *model.Settings) error {
	settings.UpdatedAt = time.Now().UTC()

	result, err := s.db.NamedExecContext(ctx,
		`UPDATE settings SET allow_admin_signup = :allow_admin_signup, updated_at = :updated_at
		 WHERE id = :id`, settings)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update settings rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
