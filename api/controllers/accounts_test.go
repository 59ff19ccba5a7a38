package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/emporium-dev/emporium/api/middleware"
	"github.com/emporium-dev/emporium/internal/auth"
	"github.com/emporium-dev/emporium/internal/customers"
	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/enums"
)

var testSessionConfig = config.SessionConfig{AuthCookie: "emporium_session", CartCookie: "emporium_sid"}

type stubAuthService struct {
	auth.Service
	login     auth.LoginRequest
	loginResp *auth.LoginResponse
	revoked   string
	resetErr  error
	reset     auth.ResetPasswordRequest
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.login = req
	return s.loginResp, nil
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.revoked = accessID
	return nil
}

func (s *stubAuthService) ResetPassword(_ context.Context, req auth.ResetPasswordRequest) error {
	s.reset = req
	return s.resetErr
}

func (s *stubAuthService) CheckResetLink(context.Context, string, string) error {
	return s.resetErr
}

type stubCustomersService struct {
	customers.Service
	toggled uint
}

func (s *stubCustomersService) ToggleFavorite(_ context.Context, _ uint, productID uint) (bool, error) {
	s.toggled = productID
	return true, nil
}

func findCookie(resp *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range resp.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthLoginSetsCookieAndRedirects(t *testing.T) {
	svc := &stubAuthService{loginResp: &auth.LoginResponse{
		AccessToken: "token-1",
		ExpiresAt:   time.Now().Add(time.Hour),
		RedirectTo:  "/checkout/",
	}}
	handler := AuthLogin(svc, testSessionConfig, nil)

	req := httptest.NewRequest(http.MethodPost, "/login/?next=/checkout/", strings.NewReader(`{"username":"asha","password":"pw"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d: %s", resp.Code, resp.Body.String())
	}
	if loc := resp.Header().Get("Location"); loc != "/checkout/" {
		t.Fatalf("unexpected location %q", loc)
	}
	if svc.login.Next != "/checkout/" {
		t.Fatalf("expected next from query, got %q", svc.login.Next)
	}
	cookie := findCookie(resp, "emporium_session")
	if cookie == nil || cookie.Value != "token-1" || !cookie.HttpOnly {
		t.Fatalf("expected http-only session cookie, got %+v", cookie)
	}
}

func TestAuthLoginRejectsMissingPassword(t *testing.T) {
	handler := AuthLogin(&stubAuthService{}, testSessionConfig, nil)

	req := httptest.NewRequest(http.MethodPost, "/login/", strings.NewReader(`{"username":"asha"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLogoutRevokesSessionAndClearsCookie(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, testSessionConfig, nil)

	customerID := uint(4)
	req := httptest.NewRequest(http.MethodGet, "/logout/", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{
		UserID:     1,
		CustomerID: &customerID,
		Role:       enums.RoleCustomer,
		AccessID:   "access-1",
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusSeeOther || resp.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect home, got %d %q", resp.Code, resp.Header().Get("Location"))
	}
	if svc.revoked != "access-1" {
		t.Fatalf("expected access-1 revoked, got %q", svc.revoked)
	}
	if cookie := findCookie(resp, "emporium_session"); cookie == nil || cookie.MaxAge >= 0 {
		t.Fatalf("expected cookie cleared, got %+v", cookie)
	}
}

func TestAuthResetPasswordRedirects(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		location string
	}{
		{name: "success", location: auth.LoginPath},
		{name: "invalid link", err: auth.ErrInvalidResetLink, location: auth.ForgotPasswordPath},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubAuthService{resetErr: tc.err}
			r := chi.NewRouter()
			r.Post("/password-reset/{email}/{token}/", AuthResetPassword(svc, nil))

			body := `{"new_password":"n3w-pass","confirm_new_password":"n3w-pass"}`
			req := httptest.NewRequest(http.MethodPost, "/password-reset/asha@example.com/tok/", strings.NewReader(body))
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			if resp.Code != http.StatusSeeOther {
				t.Fatalf("expected 303 got %d: %s", resp.Code, resp.Body.String())
			}
			if loc := resp.Header().Get("Location"); loc != tc.location {
				t.Fatalf("expected %q got %q", tc.location, loc)
			}
			if svc.reset.Email != "asha@example.com" || svc.reset.Token != "tok" {
				t.Fatalf("expected path values, got %+v", svc.reset)
			}
		})
	}
}

func TestToggleFavouriteReturnsToReferer(t *testing.T) {
	cases := []struct {
		referer  string
		location string
	}{
		{referer: "http://example.com/product/trail-runner/5", location: "/product/trail-runner/5"},
		{referer: "http://evil.test/phish", location: "/"},
		{referer: "", location: "/"},
	}
	for _, tc := range cases {
		svc := &stubCustomersService{}
		r := chi.NewRouter()
		r.Get("/add-to-favourite-{id}", ToggleFavourite(svc, nil))

		customerID := uint(9)
		req := httptest.NewRequest(http.MethodGet, "/add-to-favourite-5", nil)
		if tc.referer != "" {
			req.Header.Set("Referer", tc.referer)
		}
		req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{UserID: 1, CustomerID: &customerID, Role: enums.RoleCustomer}))
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		if resp.Code != http.StatusSeeOther {
			t.Fatalf("expected 303 got %d", resp.Code)
		}
		if loc := resp.Header().Get("Location"); loc != tc.location {
			t.Fatalf("referer %q: expected %q got %q", tc.referer, tc.location, loc)
		}
		if svc.toggled != 5 {
			t.Fatalf("expected product 5 toggled, got %d", svc.toggled)
		}
	}
}
