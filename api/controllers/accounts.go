package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emporium-dev/emporium/api/middleware"
	"github.com/emporium-dev/emporium/api/responses"
	"github.com/emporium-dev/emporium/api/validators"
	"github.com/emporium-dev/emporium/internal/auth"
	"github.com/emporium-dev/emporium/internal/customers"
	"github.com/emporium-dev/emporium/pkg/config"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/logger"
)

// AuthRegister creates the customer account and signs it in.
func AuthRegister(svc auth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var req auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.Next == "" {
			req.Next = r.URL.Query().Get("next")
		}

		resp, err := svc.Register(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, resp.AccessToken, resp.ExpiresAt)
		responses.WriteRedirect(w, resp.RedirectTo, resp)
	}
}

// AuthLogin verifies credentials and issues the session cookie.
func AuthLogin(svc auth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var req auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.Next == "" {
			req.Next = r.URL.Query().Get("next")
		}

		resp, err := svc.Login(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, cfg, resp.AccessToken, resp.ExpiresAt)
		responses.WriteRedirect(w, resp.RedirectTo, resp)
	}
}

// AuthLogout revokes the presented session and clears the cookie.
func AuthLogout(svc auth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if id, ok := middleware.IdentityFromContext(r.Context()); ok {
			if err := svc.Logout(r.Context(), id.AccessID); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		clearSessionCookie(w, cfg)
		responses.WriteRedirect(w, "/", nil)
	}
}

// AuthForgotPassword mails a reset link.
func AuthForgotPassword(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var req auth.ForgotPasswordRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ForgotPassword(r.Context(), req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteRedirect(w, auth.LoginPath, map[string]string{"status": "reset_link_sent"})
	}
}

// AuthResetLink validates the emailed link before the form is shown.
func AuthResetLink(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		email, token := chi.URLParam(r, "email"), chi.URLParam(r, "token")
		if err := svc.CheckResetLink(r.Context(), email, token); err != nil {
			writeResetError(w, r, logg, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"email": email, "status": "valid"})
	}
}

// AuthResetPassword sets a new password through a valid reset link.
func AuthResetPassword(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var req auth.ResetPasswordRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		req.Email, req.Token = chi.URLParam(r, "email"), chi.URLParam(r, "token")

		if err := svc.ResetPassword(r.Context(), req); err != nil {
			writeResetError(w, r, logg, err)
			return
		}

		responses.WriteRedirect(w, auth.LoginPath, map[string]string{"status": "password_reset"})
	}
}

func writeResetError(w http.ResponseWriter, r *http.Request, logg *logger.Logger, err error) {
	if errors.Is(err, auth.ErrInvalidResetLink) {
		responses.WriteRedirect(w, auth.ForgotPasswordPath, map[string]string{"error": err.Error()})
		return
	}
	responses.WriteError(r.Context(), logg, w, err)
}

// CustomerProfile returns the caller's account, orders and favourites.
func CustomerProfile(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		customerID, ok := middleware.CustomerIDFromContext(r.Context())
		if !ok {
			responses.WriteRedirect(w, middleware.LoginRedirect("/profile/"), nil)
			return
		}

		profile, err := svc.Profile(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, profile)
	}
}

// ToggleFavourite adds or removes a product from the caller's favourites and
// sends the browser back where it came from.
func ToggleFavourite(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customers service unavailable"))
			return
		}

		customerID, ok := middleware.CustomerIDFromContext(r.Context())
		if !ok {
			responses.WriteRedirect(w, middleware.LoginRedirect(r.URL.RequestURI()), nil)
			return
		}

		productID, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		added, err := svc.ToggleFavorite(r.Context(), customerID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteRedirect(w, backTo(r, "/"), map[string]any{"product_id": productID, "favourite": added})
	}
}

// AuthForm describes a sign-in or sign-up form and where it returns to.
func AuthForm(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"form": name,
			"next": auth.SafeNext(r.URL.Query().Get("next")),
		})
	}
}
