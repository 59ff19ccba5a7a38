package controllers

import (
	"net/http"

	"github.com/emporium-dev/emporium/api/middleware"
	"github.com/emporium-dev/emporium/api/responses"
	"github.com/emporium-dev/emporium/api/validators"
	"github.com/emporium-dev/emporium/internal/checkout"
	"github.com/emporium-dev/emporium/pkg/enums"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/logger"
)

type checkoutRequest struct {
	OrderedBy       string `json:"ordered_by" validate:"required,max=200"`
	ShippingAddress string `json:"shipping_address" validate:"required,max=200"`
	Mobile          string `json:"mobile" validate:"required,max=10"`
	Email           string `json:"email" validate:"omitempty,email"`
	PaymentMethod   string `json:"payment_method"`
}

// CheckoutView shows the cart being checked out. Sessions without a cart are
// sent home.
func CheckoutView(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		key, err := cartSessionKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		current, err := svc.View(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if current == nil {
			responses.WriteRedirect(w, checkout.RedirectHome, nil)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"cart":            current,
			"payment_methods": []enums.PaymentMethod{enums.PaymentMethodCashOnDelivery, enums.PaymentMethodOnline},
		})
	}
}

// CheckoutSubmit places the order and redirects to the success page or the
// payment handoff.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		key, err := cartSessionKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, ok := middleware.CustomerIDFromContext(r.Context())
		if !ok {
			responses.WriteRedirect(w, middleware.LoginRedirect(r.URL.RequestURI()), nil)
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("validation failed", map[string]string{"payment_method": "is invalid"}))
			return
		}

		result, err := svc.Submit(r.Context(), key, customerID, checkout.SubmitInput{
			OrderedBy:       req.OrderedBy,
			ShippingAddress: req.ShippingAddress,
			Mobile:          req.Mobile,
			Email:           req.Email,
			PaymentMethod:   method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil && result.Order != nil {
			logg.Info(logg.WithOrderID(r.Context(), result.Order.ID), "checkout.submitted")
		}
		responses.WriteRedirect(w, result.RedirectTo, result.Order)
	}
}
