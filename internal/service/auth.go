package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwellhq/inkwell/internal/model"
	"github.com/inkwellhq/inkwell/internal/store"
)

// SessionTTL is the lifetime of a session token and its cookie.
const SessionTTL = 7 * 24 * time.Hour

// bcryptCost matches the original deployment's hashing cost.
const bcryptCost = 10

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSecretKeyRequired  = errors.New("secret key required for new device")
	ErrInvalidSecretKey   = errors.New("invalid secret key")
	ErrSignupDisabled     = errors.New("admin signup disabled")
	ErrMissingFields      = errors.New("missing required fields")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
)

// SessionPrincipal is the identity carried by a validated session token.
type SessionPrincipal struct {
	AdminID int64
	Email   string
}

// AuthService implements admin registration, device-trust login, and session
// token issuance/validation.
type AuthService struct {
	store     *store.Store
	jwtSecret []byte
}

// NewAuthService creates a new AuthService signing tokens with jwtSecret.
func NewAuthService(st *store.Store, jwtSecret string) *AuthService {
	return &AuthService{
		store:     st,
		jwtSecret: []byte(jwtSecret),
	}
}

// ---------------------------------------------------------------------------
// Session tokens
// ---------------------------------------------------------------------------

type sessionClaims struct {
	AdminID int64  `json:"adminId"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed session token for the given admin. Issuance is
// pure given the signing secret; callers pass SessionTTL outside of tests.
func (s *AuthService) IssueToken(adminID int64, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		AdminID: adminID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "inkwell",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies a session token's signature and expiry. It performs
// no I/O. Expired tokens and malformed/tampered tokens fail with distinct
// errors so the gate can log them apart.
func (s *AuthService) ValidateToken(tokenStr string) (*SessionPrincipal, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return &SessionPrincipal{
		AdminID: claims.AdminID,
		Email:   claims.Email,
	}, nil
}

// ResolveToken validates a token and resolves it to the stored admin record
// with credential material cleared. A token whose admin no longer exists is
// invalid; store failures are returned wrapped so callers can report a server
// error instead of an authentication failure.
func (s *AuthService) ResolveToken(ctx context.Context, tokenStr string) (*model.Admin, error) {
	principal, err := s.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}

	admin, err := s.store.GetAdminByID(ctx, principal.AdminID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("resolve admin: %w", err)
	}

	admin.PasswordHash = ""
	admin.SecretKey = ""
	return admin, nil
}

// ---------------------------------------------------------------------------
// Device trust
// ---------------------------------------------------------------------------

// MatchTrustedDevice returns the first entry whose device label and IP address
// both exactly match, or nil. A known device on a new IP (or a known IP with a
// new device) is deliberately treated the same as a wholly unknown device.
func MatchTrustedDevice(devices []model.TrustedDevice, device, ipAddress string) *model.TrustedDevice {
	for i := range devices {
		if devices[i].Device == device && devices[i].IPAddress == ipAddress {
			return &devices[i]
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

// LoginInput carries a login attempt. SecretKey is empty unless the client is
// answering a new-device challenge.
type LoginInput struct {
	Email     string
	Password  string
	Device    string
	IPAddress string
	SecretKey string
}

// Login authenticates an admin and applies the device-trust rules: a known
// (device, IP) pair refreshes its last-login timestamp, any other pair must
// present the admin's secret key and is then appended to the trusted list.
// Failure paths never mutate the store.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*model.Admin, error) {
	admin, err := s.store.GetAdminByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("look up admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	devices, err := s.store.ListTrustedDevices(ctx, admin.ID)
	if err != nil {
		return nil, fmt.Errorf("load trusted devices: %w", err)
	}

	now := time.Now().UTC()
	if matched := MatchTrustedDevice(devices, in.Device, in.IPAddress); matched != nil {
		if err := s.store.TouchTrustedDevice(ctx, matched.ID, now); err != nil {
			return nil, fmt.Errorf("refresh trusted device: %w", err)
		}
		return admin, nil
	}

	// New device, or a known device from a new IP: demand the secret key.
	if in.SecretKey == "" {
		return nil, ErrSecretKeyRequired
	}
	if in.SecretKey != admin.SecretKey {
		return nil, ErrInvalidSecretKey
	}

	td := &model.TrustedDevice{
		AdminID:   admin.ID,
		Device:    in.Device,
		IPAddress: in.IPAddress,
		LastLogin: now,
	}
	if err := s.store.AppendTrustedDevice(ctx, td); err != nil {
		return nil, fmt.Errorf("append trusted device: %w", err)
	}
	return admin, nil
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Device    string
	IPAddress string
}

// Register creates a new admin after checking the signup gate. The gate is
// consulted before the submitted fields are looked at, so a disabled gate
// rejects even an incomplete request. The returned string is the plaintext
// secret key; it is shown to the client exactly once and is not retrievable
// afterwards. The registering (device, IP) pair seeds the trusted-device list.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.Admin, string, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("read signup gate: %w", err)
	}
	if !settings.AllowAdminSignup {
		return nil, "", ErrSignupDisabled
	}

	if in.Name == "" || in.Email == "" || in.Password == "" || in.Device == "" {
		return nil, "", ErrMissingFields
	}

	if _, err := s.store.GetAdminByEmail(ctx, in.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("check existing admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	secretKey, err := GenerateSecretKey()
	if err != nil {
		return nil, "", fmt.Errorf("generate secret key: %w", err)
	}

	admin := &model.Admin{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		SecretKey:    secretKey,
	}
	td := &model.TrustedDevice{
		Device:    in.Device,
		IPAddress: in.IPAddress,
		LastLogin: time.Now().UTC(),
	}
	if err := s.store.CreateAdminWithDevice(ctx, admin, td); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("create admin: %w", err)
	}

	return admin, secretKey, nil
}

// HashPassword hashes a plaintext password for storage. Used by the profile
// update handler and the admin CLI.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// GenerateSecretKey returns a 64-character hex string from 32 random bytes.
func GenerateSecretKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
