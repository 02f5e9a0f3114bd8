package model

import "time"

// Settings is the site-wide settings singleton. Exactly one row exists in the
// store; it is created lazily with signup allowed so the first admin can
// register.
type Settings struct {
	ID               int64     `json:"id" db:"id"`
	AllowAdminSignup bool      `json:"allowAdminSignup" db:"allow_admin_signup"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}
