package controllers

import (
	"net/http"
	"strings"

	"github.com/emporium-dev/emporium/api/middleware"
	"github.com/emporium-dev/emporium/api/responses"
	"github.com/emporium-dev/emporium/api/validators"
	"github.com/emporium-dev/emporium/internal/cart"
	"github.com/emporium-dev/emporium/pkg/enums"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/logger"
)

// MyCartPath is where cart mutations send the browser.
const MyCartPath = "/my-cart/"

func cartSessionKey(r *http.Request) (string, error) {
	key := middleware.CartSessionFromContext(r.Context())
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "cart session missing")
	}
	return key, nil
}

// AddToCart puts one unit of the product into the session cart.
func AddToCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		key, err := cartSessionKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddItem(r.Context(), key, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MyCart returns the session cart. An empty object means no cart yet.
func MyCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
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
		responses.WriteSuccess(w, map[string]any{"cart": current})
	}
}

// ManageCart applies inc, dcr or rmv to one line.
func ManageCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		key, err := cartSessionKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		// unknown actions leave the line as is and still land on the cart page
		action := enums.CartAction(strings.TrimSpace(r.URL.Query().Get("action")))
		updated, err := svc.Adjust(r.Context(), key, itemID, action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRedirect(w, MyCartPath, updated)
	}
}

func EmptyCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		key, err := cartSessionKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Empty(r.Context(), key); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRedirect(w, MyCartPath, nil)
	}
}
