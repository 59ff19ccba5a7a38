package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emporium-dev/emporium/pkg/cartsession"
	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/enums"
)

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{CartCookie: "emporium_sid", CartSessionTTL: time.Hour}
}

func TestCartSessionMintsCookie(t *testing.T) {
	var key string
	handler := CartSession(testSessionConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = CartSessionFromContext(r.Context())
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/my-cart/", nil))

	if !cartsession.ValidKey(key) {
		t.Fatalf("expected a minted key, got %q", key)
	}
	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "emporium_sid" || cookies[0].Value != key {
		t.Fatalf("unexpected cookies %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatalf("cart cookie must be HttpOnly")
	}
}

func TestCartSessionReusesValidCookie(t *testing.T) {
	existing := cartsession.NewKey()
	var key string
	handler := CartSession(testSessionConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = CartSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/my-cart/", nil)
	req.AddCookie(&http.Cookie{Name: "emporium_sid", Value: existing})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if key != existing {
		t.Fatalf("expected %q got %q", existing, key)
	}
	if len(resp.Result().Cookies()) != 0 {
		t.Fatalf("no cookie should be set for a valid session")
	}
}

func TestCartSessionReplacesForgedCookie(t *testing.T) {
	var key string
	handler := CartSession(testSessionConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key = CartSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/my-cart/", nil)
	req.AddCookie(&http.Cookie{Name: "emporium_sid", Value: "../../etc"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if key == "../../etc" || !cartsession.ValidKey(key) {
		t.Fatalf("forged key must be replaced, got %q", key)
	}
}

type recordingBinder struct {
	calls []uint
	err   error
}

func (b *recordingBinder) BindCustomer(_ context.Context, _ string, customerID uint) error {
	b.calls = append(b.calls, customerID)
	return b.err
}

func TestBindCartCustomer(t *testing.T) {
	binder := &recordingBinder{err: errors.New("ignored")}
	var ran int
	handler := BindCartCustomer(binder, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran++
	}))

	anon := httptest.NewRequest(http.MethodGet, "/", nil)
	anon = anon.WithContext(WithCartSession(anon.Context(), "sid"))
	handler.ServeHTTP(httptest.NewRecorder(), anon)

	customerID := uint(9)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := WithCartSession(req.Context(), "sid")
	ctx = WithIdentity(ctx, Identity{UserID: 1, CustomerID: &customerID, Role: enums.RoleCustomer})
	handler.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	if ran != 2 {
		t.Fatalf("handler ran %d times, expected 2", ran)
	}
	if len(binder.calls) != 1 || binder.calls[0] != 9 {
		t.Fatalf("unexpected bind calls %v", binder.calls)
	}
}
