package controllers

import (
	"net/http"

	"github.com/emporium-dev/emporium/api/middleware"
	"github.com/emporium-dev/emporium/api/responses"
	"github.com/emporium-dev/emporium/api/validators"
	"github.com/emporium-dev/emporium/internal/payments"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/logger"
)

// PaymentRequest creates the gateway intent for an online order.
func PaymentRequest(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		customerID, ok := middleware.CustomerIDFromContext(r.Context())
		if !ok {
			responses.WriteRedirect(w, middleware.LoginRedirect(r.URL.RequestURI()), nil)
			return
		}
		orderID, err := validators.ParseQueryID(r, "o_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := svc.RequestPayment(r.Context(), customerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, req)
	}
}

// PaymentSuccess is the landing page after a completed order.
func PaymentSuccess() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "success"})
	}
}
