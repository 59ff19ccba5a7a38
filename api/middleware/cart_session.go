package middleware

import (
	"context"
	"net/http"

	"github.com/emporium-dev/emporium/pkg/cartsession"
	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/logger"
)

// CartSession ensures every request carries an opaque cart session key,
// minting and setting the cookie when it is missing or malformed.
func CartSession(cfg config.SessionConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if c, err := r.Cookie(cfg.CartCookie); err == nil && cartsession.ValidKey(c.Value) {
				key = c.Value
			}
			if key == "" {
				key = cartsession.NewKey()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CartCookie,
					Value:    key,
					Path:     "/",
					MaxAge:   int(cfg.CartSessionTTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithCartSession(r.Context(), key)
			if logg != nil {
				ctx = logg.WithSessionKey(ctx, key)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type customerBinder interface {
	BindCustomer(ctx context.Context, sessionKey string, customerID uint) error
}

// BindCartCustomer attaches the session's cart to the authenticated customer.
// Binding failures are logged and never block the request.
func BindCartCustomer(binder customerBinder, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if binder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := CartSessionFromContext(ctx)
			if customerID, ok := CustomerIDFromContext(ctx); ok && key != "" {
				if err := binder.BindCustomer(ctx, key, customerID); err != nil && logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "cart.bind_customer.failed")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
