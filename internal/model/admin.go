package model

import "time"

// Admin is an administrative user of the CMS. Passwords are stored as bcrypt
// hashes and the secret key is a one-time-issued device-verification secret;
// neither is ever serialized to a client.
type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // bcrypt hash, never expose
	SecretKey    string    `json:"-" db:"secret_key"`    // returned exactly once, at registration
	ProfilePic   string    `json:"profilePic" db:"profile_pic"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`

	// TrustedDevices is loaded separately from the trusted_devices table.
	TrustedDevices []TrustedDevice `json:"trustedDevices,omitempty" db:"-"`
}

// TrustedDevice is a (device label, IP address) pair previously verified via
// the admin's secret key. The list is ordered by insertion and intentionally
// carries no uniqueness constraint or upper bound.
type TrustedDevice struct {
	ID        int64     `json:"id" db:"id"`
	AdminID   int64     `json:"-" db:"admin_id"`
	Device    string    `json:"device" db:"device"`
	IPAddress string    `json:"ipAddress" db:"ip_address"`
	LastLogin time.Time `json:"lastLogin" db:"last_login"`
}

// AdminSummary is the shape of an admin returned from the authentication
// endpoints: identity fields only, no credential material.
type AdminSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the admin's public summary.
func (a *Admin) Summary() AdminSummary {
	return AdminSummary{ID: a.ID, Name: a.Name, Email: a.Email}
}
