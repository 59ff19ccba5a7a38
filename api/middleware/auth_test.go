package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emporium-dev/emporium/pkg/auth"
	"github.com/emporium-dev/emporium/pkg/auth/session"
	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/enums"
)

const testCookie = "emporium_session"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func captureIdentity(got *Identity, seen *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateLeavesAnonymousRequestsAlone(t *testing.T) {
	var (
		got  Identity
		seen bool
	)
	handler := Authenticate(testJWTConfig(), testCookie, stubSessionVerifier{ok: true}, nil)(captureIdentity(&got, &seen))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seen {
		t.Fatalf("expected no identity, got %+v", got)
	}
}

func TestAuthenticateIgnoresInvalidToken(t *testing.T) {
	var (
		got  Identity
		seen bool
	)
	handler := Authenticate(testJWTConfig(), testCookie, stubSessionVerifier{ok: true}, nil)(captureIdentity(&got, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if seen {
		t.Fatalf("invalid token must not authenticate")
	}
}

func TestAuthenticateReadsBearerToken(t *testing.T) {
	cfg := testJWTConfig()
	customerID := uint(42)
	token, jti := mintTestToken(t, cfg, 7, &customerID, enums.RoleCustomer)

	var (
		got  Identity
		seen bool
	)
	handler := Authenticate(cfg, testCookie, stubSessionVerifier{ok: true}, nil)(captureIdentity(&got, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if !seen {
		t.Fatal("expected identity in context")
	}
	if got.UserID != 7 || got.CustomerID == nil || *got.CustomerID != 42 {
		t.Fatalf("unexpected identity %+v", got)
	}
	if got.Role != enums.RoleCustomer || got.AccessID != jti {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestAuthenticateReadsCookie(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := mintTestToken(t, cfg, 1, nil, enums.RoleAdmin)

	var (
		got  Identity
		seen bool
	)
	handler := Authenticate(cfg, testCookie, stubSessionVerifier{ok: true}, nil)(captureIdentity(&got, &seen))

	req := httptest.NewRequest(http.MethodGet, "/admin-home/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !seen || !got.IsAdmin() {
		t.Fatalf("expected admin identity, got %+v", got)
	}
}

func TestAuthenticateRejectsRevokedSession(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := mintTestToken(t, cfg, 7, nil, enums.RoleCustomer)

	var (
		got  Identity
		seen bool
	)
	handler := Authenticate(cfg, testCookie, stubSessionVerifier{ok: false}, nil)(captureIdentity(&got, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen {
		t.Fatalf("revoked session must not authenticate")
	}
}

func TestAuthenticateSurfacesSessionStoreFailure(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := mintTestToken(t, cfg, 7, nil, enums.RoleCustomer)

	handler := Authenticate(cfg, testCookie, stubSessionVerifier{err: errors.New("redis down")}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestRequireCustomerRedirectsToLogin(t *testing.T) {
	handler := RequireCustomer()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/checkout/", nil))
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/login/?next=%2Fcheckout%2F" {
		t.Fatalf("unexpected location %q", loc)
	}

	// An admin without a customer record cannot check out either.
	req := httptest.NewRequest(http.MethodGet, "/checkout/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: 1, Role: enums.RoleAdmin}))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}

	customerID := uint(3)
	req = httptest.NewRequest(http.MethodGet, "/checkout/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: 2, CustomerID: &customerID, Role: enums.RoleCustomer}))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	customerID := uint(3)
	req := httptest.NewRequest(http.MethodGet, "/admin-home/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: 2, CustomerID: &customerID, Role: enums.RoleCustomer}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
	if !strings.HasPrefix(resp.Header().Get("Location"), LoginPath) {
		t.Fatalf("expected login redirect, got %q", resp.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodGet, "/admin-home/", nil)
	req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: 1, Role: enums.RoleAdmin}))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, userID uint, customerID *uint, role enums.Role) (string, string) {
	t.Helper()
	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(cfg, time.Now(), auth.AccessTokenPayload{
		UserID:     userID,
		CustomerID: customerID,
		Role:       role,
		JTI:        accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, accessID
}

type stubSessionVerifier struct {
	ok  bool
	err error
}

func (s stubSessionVerifier) HasSession(ctx context.Context, accessID string) (bool, error) {
	return s.ok, s.err
}
