package controllers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/emporium-dev/emporium/internal/auth"
	"github.com/emporium-dev/emporium/pkg/config"
)

// setSessionCookie stores the access token for browser clients.
func setSessionCookie(w http.ResponseWriter, cfg config.SessionConfig, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.AuthCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.SessionConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.AuthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// backTo returns the same-site path of the Referer header, or fallback.
func backTo(r *http.Request, fallback string) string {
	ref := r.Header.Get("Referer")
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != r.Host) {
		return fallback
	}
	target := u.EscapedPath()
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	if safe := auth.SafeNext(target); safe == target {
		return safe
	}
	return fallback
}
