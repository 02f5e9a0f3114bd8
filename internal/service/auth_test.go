package service

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/inkwellhq/inkwell/internal/model"
	"github.com/inkwellhq/inkwell/internal/store"
)

const (
	testSecret   = "unit-test-signing-secret"
	testPassword = "correct horse battery staple"
	testDevice   = "Chrome on macOS"
	testIP       = "198.51.100.7"
)

func newTestService(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	st, err := store.New("")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewAuthService(st, testSecret), st
}

// seedAdmin registers an admin through the normal path and returns the record
// plus the one-time secret key.
func seedAdmin(t *testing.T, svc *AuthService) (*model.Admin, string) {
	t.Helper()
	admin, secretKey, err := svc.Register(context.Background(), RegisterInput{
		Name:      "Test Admin",
		Email:     "admin@example.com",
		Password:  testPassword,
		Device:    testDevice,
		IPAddress: testIP,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return admin, secretKey
}

// ---------------------------------------------------------------------------
// Session tokens
// ---------------------------------------------------------------------------

func TestIssueToken_RoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.IssueToken(42, "admin@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	principal, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if principal.AdminID != 42 {
		t.Errorf("AdminID = %d, want 42", principal.AdminID)
	}
	if principal.Email != "admin@example.com" {
		t.Errorf("Email = %q, want admin@example.com", principal.Email)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.IssueToken(1, "admin@example.com", -time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	_, err = svc.ValidateToken(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestValidateToken_Tampered(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.IssueToken(1, "admin@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	_, err = svc.ValidateToken(token + "x")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}

	_, err = svc.ValidateToken("not.a.token")
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken for garbage input", err)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc, _ := newTestService(t)
	other := NewAuthService(nil, "a-different-secret")

	token, err := other.IssueToken(1, "admin@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	_, err = svc.ValidateToken(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken for foreign signature", err)
	}
}

func TestResolveToken_DeletedAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.IssueToken(999, "ghost@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	_, err = svc.ResolveToken(context.Background(), token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken for vanished admin", err)
	}
}

func TestResolveToken_ClearsCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	admin, _ := seedAdmin(t, svc)

	token, err := svc.IssueToken(admin.ID, admin.Email, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	resolved, err := svc.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if resolved.PasswordHash != "" {
		t.Error("resolved admin still carries a password hash")
	}
	if resolved.SecretKey != "" {
		t.Error("resolved admin still carries a secret key")
	}
}

// ---------------------------------------------------------------------------
// Device matching
// ---------------------------------------------------------------------------

func TestMatchTrustedDevice(t *testing.T) {
	devices := []model.TrustedDevice{
		{ID: 1, Device: "Chrome on macOS", IPAddress: "1.2.3.4"},
		{ID: 2, Device: "Safari on iPhone", IPAddress: "5.6.7.8"},
	}

	tests := []struct {
		name   string
		device string
		ip     string
		wantID int64 // 0 means no match
	}{
		{"exact first entry", "Chrome on macOS", "1.2.3.4", 1},
		{"exact second entry", "Safari on iPhone", "5.6.7.8", 2},
		{"known device new ip", "Chrome on macOS", "9.9.9.9", 0},
		{"known ip new device", "Firefox on Linux", "1.2.3.4", 0},
		{"cross-matched pair", "Chrome on macOS", "5.6.7.8", 0},
		{"wholly unknown", "Edge on Windows", "9.9.9.9", 0},
		{"case sensitive device", "chrome on macos", "1.2.3.4", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchTrustedDevice(devices, tt.device, tt.ip)
			if tt.wantID == 0 {
				if got != nil {
					t.Errorf("matched entry %d, want no match", got.ID)
				}
				return
			}
			if got == nil {
				t.Fatal("got no match, want a match")
			}
			if got.ID != tt.wantID {
				t.Errorf("matched entry %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestMatchTrustedDevice_EmptyList(t *testing.T) {
	if got := MatchTrustedDevice(nil, "any", "1.2.3.4"); got != nil {
		t.Errorf("matched %v against an empty list", got)
	}
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestLogin_TrustedPair(t *testing.T) {
	svc, st := newTestService(t)
	admin, _ := seedAdmin(t, svc)
	ctx := context.Background()

	before, err := st.ListTrustedDevices(ctx, admin.ID)
	if err != nil {
		t.Fatalf("ListTrustedDevices: %v", err)
	}

	got, err := svc.Login(ctx, LoginInput{
		Email:     admin.Email,
		Password:  testPassword,
		Device:    testDevice,
		IPAddress: testIP,
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != admin.ID {
		t.Errorf("logged in admin %d, want %d", got.ID, admin.ID)
	}

	// The matched entry's last login moves forward; no entry is added.
	after, err := st.ListTrustedDevices(ctx, admin.ID)
	if err != nil {
		t.Fatalf("ListTrustedDevices: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("trusted devices = %d, want %d", len(after), len(before))
	}
	if !after[0].LastLogin.After(before[0].LastLogin) && !after[0].LastLogin.Equal(before[0].LastLogin) {
		t.Error("expected last login to be refreshed")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	admin, _ := seedAdmin(t, svc)

	_, err := svc.Login(context.Background(), LoginInput{
		Email:     admin.Email,
		Password:  "wrong",
		Device:    testDevice,
		IPAddress: testIP,
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)
	seedAdmin(t, svc)

	// Unknown account and wrong password collapse into the same sentinel.
	_, err := svc.Login(context.Background(), LoginInput{
		Email:     "nobody@example.com",
		Password:  testPassword,
		Device:    testDevice,
		IPAddress: testIP,
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_NewDeviceWithoutKey(t *testing.T) {
	svc, st := newTestService(t)
	admin, _ := seedAdmin(t, svc)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{
		Email:     admin.Email,
		Password:  testPassword,
		Device:    "Safari on iPhone",
		IPAddress: testIP,
	})
	if !errors.Is(err, ErrSecretKeyRequired) {
		t.Errorf("err = %v, want ErrSecretKeyRequired", err)
	}

	// The challenge must not mutate the trusted list.
	devices, err := st.ListTrustedDevices(ctx, admin.ID)
	if err != nil {
		t.Fatalf("ListTrustedDevices: %v", err)
	}
	if len(devices) != 1 {
		t.Errorf("trusted devices = %d, want 1", len(devices))
	}
}

func TestLogin_NewIPWithoutKey(t *testing.T) {
	svc, _ := newTestService(t)
	admin, _ := seedAdmin(t, svc)

	// Same device label from a different address is a new pair.
	_, err := svc.Login(context.Background(), LoginInput{
		Email:     admin.Email,
		Password:  testPassword,
		Device:    testDevice,
		IPAddress: "203.0.113.200",
	})
	if !errors.Is(err, ErrSecretKeyRequired) {
		t.Errorf("err = %v, want ErrSecretKeyRequired", err)
	}
}

func TestLogin_WrongSecretKey(t *testing.T) {
	svc, st := newTestService(t)
	admin, _ := seedAdmin(t, svc)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{
		Email:     admin.Email,
		Password:  testPassword,
		Device:    "Safari on iPhone",
		IPAddress: testIP,
		SecretKey: "not-the-key",
	})
	if !errors.Is(err, ErrInvalidSecretKey) {
		t.Errorf("err = %v, want ErrInvalidSecretKey", err)
	}

	devices, err := st.ListTrustedDevices(ctx, admin.ID)
	if err != nil {
		t.Fatalf("ListTrustedDevices: %v", err)
	}
	if len(devices) != 1 {
		t.Errorf("trusted devices = %d, want 1 after rejected key", len(devices))
	}
}

func TestLogin_NewDeviceWithKey(t *testing.T) {
	svc, st := newTestService(t)
	admin, secretKey := seedAdmin(t, svc)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{
		Email:     admin.Email,
		Password:  testPassword,
		Device:    "Safari on iPhone",
		IPAddress: "203.0.113.200",
		SecretKey: secretKey,
	})
	if err != nil {
		t.Fatalf("Login with secret key: %v", err)
	}

	devices, err := st.ListTrustedDevices(ctx, admin.ID)
	if err != nil {
		t.Fatalf("ListTrustedDevices: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("trusted devices = %d, want 2", len(devices))
	}

	// The new pair is trusted from now on.
	_, err = svc.Login(ctx, LoginInput{
		Email:     admin.Email,
		Password:  testPassword,
		Device:    "Safari on iPhone",
		IPAddress: "203.0.113.200",
	})
	if err != nil {
		t.Errorf("second login from the verified device: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

func TestRegister_SeedsTrustedDevice(t *testing.T) {
	svc, st := newTestService(t)
	admin, _ := seedAdmin(t, svc)

	devices, err := st.ListTrustedDevices(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("ListTrustedDevices: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("trusted devices = %d, want 1", len(devices))
	}
	if devices[0].Device != testDevice || devices[0].IPAddress != testIP {
		t.Errorf("seeded pair = (%q, %q), want (%q, %q)",
			devices[0].Device, devices[0].IPAddress, testDevice, testIP)
	}
}

func TestRegister_SecretKeyFormat(t *testing.T) {
	svc, _ := newTestService(t)
	_, secretKey := seedAdmin(t, svc)

	if len(secretKey) != 64 {
		t.Errorf("secret key length = %d, want 64", len(secretKey))
	}
	if _, err := hex.DecodeString(secretKey); err != nil {
		t.Errorf("secret key is not hex: %v", err)
	}
}

func TestRegister_GateClosed(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	settings, err := st.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	settings.AllowAdminSignup = false
	if err := st.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	_, _, err = svc.Register(ctx, RegisterInput{
		Name:      "Late Admin",
		Email:     "late@example.com",
		Password:  testPassword,
		Device:    testDevice,
		IPAddress: testIP,
	})
	if !errors.Is(err, ErrSignupDisabled) {
		t.Errorf("err = %v, want ErrSignupDisabled", err)
	}
}

func TestRegister_GateCheckedBeforeFields(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	settings, err := st.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	settings.AllowAdminSignup = false
	if err := st.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	// Empty input still hits the gate first.
	_, _, err = svc.Register(ctx, RegisterInput{})
	if !errors.Is(err, ErrSignupDisabled) {
		t.Errorf("err = %v, want ErrSignupDisabled", err)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{
		Name:      "No Device",
		Email:     "nodevice@example.com",
		Password:  testPassword,
		IPAddress: testIP,
	})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("err = %v, want ErrMissingFields", err)
	}

	hasAdmin, err := st.HasAnyAdmin(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdmin: %v", err)
	}
	if hasAdmin {
		t.Error("rejected registration created an admin row")
	}
}

func TestRegister_GateReopens(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	settings, err := st.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	settings.AllowAdminSignup = false
	if err := st.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	// The gate is read per attempt, so reopening takes effect immediately.
	settings.AllowAdminSignup = true
	if err := st.UpdateSettings(ctx, settings); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	_, _, err = svc.Register(ctx, RegisterInput{
		Name:      "Test Admin",
		Email:     "admin@example.com",
		Password:  testPassword,
		Device:    testDevice,
		IPAddress: testIP,
	})
	if err != nil {
		t.Errorf("Register after reopening: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	admin, _ := seedAdmin(t, svc)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name:      "Second Admin",
		Email:     admin.Email,
		Password:  "anotherpassword",
		Device:    "Firefox on Linux",
		IPAddress: "203.0.113.50",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegister_SecretKeyImmediatelyValid(t *testing.T) {
	svc, _ := newTestService(t)
	admin, secretKey := seedAdmin(t, svc)

	// The key handed out at registration verifies a brand-new device with no
	// intermediate steps.
	_, err := svc.Login(context.Background(), LoginInput{
		Email:     admin.Email,
		Password:  testPassword,
		Device:    "Fresh Device",
		IPAddress: "203.0.113.99",
		SecretKey: secretKey,
	})
	if err != nil {
		t.Errorf("Login with registration key: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Password hashing
// ---------------------------------------------------------------------------

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("a password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("a password")); err != nil {
		t.Errorf("hash does not verify: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("another password")); err == nil {
		t.Error("hash verified the wrong password")
	}
}

func TestGenerateSecretKey_Unique(t *testing.T) {
	a, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey: %v", err)
	}
	b, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey: %v", err)
	}
	if a == b {
		t.Error("two generated keys are identical")
	}
}
