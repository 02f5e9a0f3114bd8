package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/inkwellhq/inkwell/internal/model"
	"github.com/inkwellhq/inkwell/internal/service"
	"github.com/inkwellhq/inkwell/internal/store"
)

// ---------------------------------------------------------------------------
// RequestID middleware tests
// ---------------------------------------------------------------------------

func TestRequestIDGeneratesUUID(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := GetRequestID(r.Context())
		if id == "" {
			t.Error("expected non-empty request ID in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	respID := rr.Header().Get("X-Request-ID")
	if respID == "" {
		t.Error("expected X-Request-ID in response header")
	}
	// UUID v7 format check: 36 chars with dashes
	if len(respID) != 36 {
		t.Errorf("expected UUID-length request ID, got %q (len=%d)", respID, len(respID))
	}
}

func TestRequestIDPreservesClientID(t *testing.T) {
	clientID := "my-custom-trace-id-123"

	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := GetRequestID(r.Context())
		if id != clientID {
			t.Errorf("expected context ID %q, got %q", clientID, id)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", clientID)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	respID := rr.Header().Get("X-Request-ID")
	if respID != clientID {
		t.Errorf("expected response X-Request-ID %q, got %q", clientID, respID)
	}
}

func TestRequestIDReplacesOversizedClientID(t *testing.T) {
	oversized := strings.Repeat("x", maxClientRequestID+1)

	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", oversized)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	respID := rr.Header().Get("X-Request-ID")
	if respID == oversized {
		t.Error("oversized client ID was not replaced")
	}
	if len(respID) != 36 {
		t.Errorf("expected UUID-length request ID, got %q (len=%d)", respID, len(respID))
	}
}

func TestGetRequestIDEmptyContext(t *testing.T) {
	id := GetRequestID(context.Background())
	if id != "" {
		t.Errorf("expected empty string from bare context, got %q", id)
	}
}

// ---------------------------------------------------------------------------
// Authenticate middleware tests
// ---------------------------------------------------------------------------

func newAuthFixture(t *testing.T) (*service.AuthService, *model.Admin, string) {
	t.Helper()

	st, err := store.New("")
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := service.NewAuthService(st, "middleware-test-secret")
	admin, _, err := svc.Register(context.Background(), service.RegisterInput{
		Name:      "Gate Admin",
		Email:     "gate@example.com",
		Password:  "gatepassword",
		Device:    "Test Device",
		IPAddress: "1.2.3.4",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := svc.IssueToken(admin.ID, admin.Email, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return svc, admin, token
}

func authHandler(t *testing.T, svc *service.AuthService, onAdmin func(*model.Admin)) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if onAdmin != nil {
			onAdmin(GetAdmin(r.Context()))
		}
		w.WriteHeader(http.StatusOK)
	})
	return Authenticate(svc, logger)(inner)
}

func TestAuthenticate_CookieToken(t *testing.T) {
	svc, admin, token := newAuthFixture(t)

	var seen *model.Admin
	handler := authHandler(t, svc, func(a *model.Admin) { seen = a })

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rr.Code, rr.Body.String())
	}
	if seen == nil || seen.ID != admin.ID {
		t.Errorf("context admin = %v, want id %d", seen, admin.ID)
	}
	if seen.PasswordHash != "" || seen.SecretKey != "" {
		t.Error("context admin carries credential fields")
	}
}

func TestAuthenticate_BearerFallback(t *testing.T) {
	svc, _, token := newAuthFixture(t)
	handler := authHandler(t, svc, nil)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestAuthenticate_CookieWinsOverHeader(t *testing.T) {
	svc, admin, token := newAuthFixture(t)

	var seen *model.Admin
	handler := authHandler(t, svc, func(a *model.Admin) { seen = a })

	// A bogus header next to a valid cookie must not break the request.
	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if seen == nil || seen.ID != admin.ID {
		t.Errorf("context admin = %v, want id %d", seen, admin.ID)
	}
}

func TestAuthenticate_NoToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	handler := authHandler(t, svc, func(a *model.Admin) {
		t.Error("inner handler should not run without a token")
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	svc, admin, _ := newAuthFixture(t)

	expired, err := svc.IssueToken(admin.ID, admin.Email, -time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	handler := authHandler(t, svc, nil)
	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: expired})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	handler := authHandler(t, svc, nil)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// GetAdmin tests
// ---------------------------------------------------------------------------

func TestGetAdminWithValue(t *testing.T) {
	expected := &model.Admin{ID: 42, Email: "ctx@example.com"}
	ctx := context.WithValue(context.Background(), AdminKey, expected)

	got := GetAdmin(ctx)
	if got == nil {
		t.Fatal("expected non-nil admin")
	}
	if got.ID != 42 {
		t.Errorf("expected ID 42, got %d", got.ID)
	}
}

func TestGetAdminWithoutValue(t *testing.T) {
	got := GetAdmin(context.Background())
	if got != nil {
		t.Error("expected nil admin from bare context")
	}
}
