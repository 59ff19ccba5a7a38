package middleware

import (
	"net/http"
	"net/url"

	"github.com/emporium-dev/emporium/api/responses"
)

// LoginPath receives callers that fail a role gate.
const LoginPath = "/login/"

// LoginRedirect builds the login URL that returns to next afterwards.
func LoginRedirect(next string) string {
	if next == "" {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{"next": {next}}.Encode()
}

// RequireCustomer admits callers that own a customer record.
func RequireCustomer() func(http.Handler) http.Handler {
	return requireIdentity(func(id Identity) bool { return id.CustomerID != nil })
}

// RequireAdmin admits superusers only.
func RequireAdmin() func(http.Handler) http.Handler {
	return requireIdentity(Identity.IsAdmin)
}

func requireIdentity(allowed func(Identity) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok || !allowed(id) {
				responses.WriteRedirect(w, LoginRedirect(r.URL.RequestURI()), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
