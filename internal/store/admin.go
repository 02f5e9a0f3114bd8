package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/inkwellhq/inkwell/internal/model"
)

const insertAdminQuery = `INSERT INTO admins
	(name, email, password_hash, secret_key, profile_pic, created_at, updated_at)
	VALUES
	(:name, :email, :password_hash, :secret_key, :profile_pic, :created_at, :updated_at)`

const insertTrustedDeviceQuery = `INSERT INTO trusted_devices
	(admin_id, device, ip_address, last_login)
	VALUES (:admin_id, :device, :ip_address, :last_login)`

// CreateAdmin inserts a new admin account. The ID, CreatedAt, and UpdatedAt
// fields are populated after a successful insert.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	result, err := s.db.NamedExecContext(ctx, insertAdminQuery, admin)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert admin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get admin id: %w", err)
	}
	admin.ID = id
	return nil
}

// CreateAdminWithDevice inserts a new admin and seeds its first trusted-device
// entry in one transaction. Either both rows persist or neither does; an admin
// account never exists with an empty trusted-device list.
func (s *Store) CreateAdminWithDevice(ctx context.Context, admin *model.Admin, td *model.TrustedDevice) error {
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create admin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.NamedExecContext(ctx, insertAdminQuery, admin)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get admin id: %w", err)
	}
	admin.ID = id

	td.AdminID = admin.ID
	result, err = tx.NamedExecContext(ctx, insertTrustedDeviceQuery, td)
	if err != nil {
		return fmt.Errorf("seed trusted device: %w", err)
	}
	deviceID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get trusted device id: %w", err)
	}
	td.ID = deviceID

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create admin: %w", err)
	}
	return nil
}

// GetAdminByEmail returns an admin by email address. Comparison is exact;
// admin emails are stored as given.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	if err := s.db.GetContext(ctx, &admin, "SELECT * FROM admins WHERE email = ?", email); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by email: %w", err)
	}
	return &admin, nil
}

// GetAdminByID returns an admin by ID.
func (s *Store) GetAdminByID(ctx context.Context, id int64) (*model.Admin, error) {
	var admin model.Admin
	if err := s.db.GetContext(ctx, &admin, "SELECT * FROM admins WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin by id: %w", err)
	}
	return &admin, nil
}

// ListAdmins returns all admin accounts sorted by name, for author selection.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := s.db.SelectContext(ctx, &admins, "SELECT * FROM admins ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// HasAnyAdmin reports whether at least one admin account exists. Used for
// first-run detection.
func (s *Store) HasAnyAdmin(ctx context.Context) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	return count > 0, nil
}

// AdminEmailInUse reports whether email belongs to an admin other than exceptID.
func (s *Store) AdminEmailInUse(ctx context.Context, email string, exceptID int64) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM admins WHERE email = ? AND id != ?", email, exceptID); err != nil {
		return false, fmt.Errorf("check admin email: %w", err)
	}
	return count > 0, nil
}

// UpdateAdmin persists changes to an admin's name, email, profile picture, and
// password hash.
func (s *Store) UpdateAdmin(ctx context.Context, admin *model.Admin) error {
	admin.UpdatedAt = time.Now().UTC()

	const q = `UPDATE admins SET
		name = :name, email = :email, password_hash = :password_hash,
		profile_pic = :profile_pic, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, admin)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update admin: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update admin rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Trusted devices
// ---------------------------------------------------------------------------

// ListTrustedDevices returns an admin's trusted-device entries in insertion
// order.
func (s *Store) ListTrustedDevices(ctx context.Context, adminID int64) ([]model.TrustedDevice, error) {
	var devices []model.TrustedDevice
	if err := s.db.SelectContext(ctx, &devices,
		"SELECT * FROM trusted_devices WHERE admin_id = ? ORDER BY id", adminID); err != nil {
		return nil, fmt.Errorf("list trusted devices: %w", err)
	}
	return devices, nil
}

// AppendTrustedDevice adds a trusted-device entry for an admin. Duplicate
// (device, ip) pairs are allowed; the list has no uniqueness constraint.
func (s *Store) AppendTrustedDevice(ctx context.Context, td *model.TrustedDevice) error {
	result, err := s.db.NamedExecContext(ctx, insertTrustedDeviceQuery, td)
	if err != nil {
		return fmt.Errorf("insert trusted device: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get trusted device id: %w", err)
	}
	td.ID = id
	return nil
}

// TouchTrustedDevice refreshes the last-login timestamp of a trusted-device
// entry.
func (s *Store) TouchTrustedDevice(ctx context.Context, id int64, lastLogin time.Time) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE trusted_devices SET last_login = ? WHERE id = ?", lastLogin.UTC(), id)
	if err != nil {
		return fmt.Errorf("touch trusted device: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch trusted device rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
