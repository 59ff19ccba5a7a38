package middleware

import (
	"net/http"
	"strings"

	"github.com/emporium-dev/emporium/api/responses"
	pkgAuth "github.com/emporium-dev/emporium/pkg/auth"
	"github.com/emporium-dev/emporium/pkg/auth/session"
	"github.com/emporium-dev/emporium/pkg/config"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/logger"
)

// Authenticate resolves the caller from a bearer token or the session cookie.
// Storefront pages are public, so a missing, expired or revoked token leaves
// the request anonymous; the role gates decide what anonymous callers see.
func Authenticate(cfg config.JWTConfig, cookieName string, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := accessToken(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil || claims.ID == "" {
				if logg != nil {
					logg.Debug(r.Context(), "auth.token.rejected")
				}
				next.ServeHTTP(w, r)
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := WithIdentity(r.Context(), Identity{
				UserID:     claims.UserID,
				CustomerID: claims.CustomerID,
				Role:       claims.Role,
				AccessID:   claims.ID,
			})
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID)
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessToken(r *http.Request, cookieName string) string {
	if raw := strings.TrimSpace(r.Header.Get("Authorization")); raw != "" {
		if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
			return strings.TrimSpace(raw[7:])
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
