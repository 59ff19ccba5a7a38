package controllers

import (
	"context"
	"net/http"

	"github.com/emporium-dev/emporium/api/responses"
	"github.com/emporium-dev/emporium/api/validators"
	"github.com/emporium-dev/emporium/api/views"
	"github.com/emporium-dev/emporium/internal/catalog"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/logger"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

const maxSearchLength = 200

func catalogUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
}

// StorefrontHome returns the banners and featured products.
func StorefrontHome(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}
		home, err := svc.Home(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, home)
	}
}

func CatalogSearch(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}
		query := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLength)
		products, err := svc.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"query": query, "products": products})
	}
}

func CategoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func BrandList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}
		brands, err := svc.Brands(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, brands)
	}
}

// ProductList pages through active products, newest first.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.Products(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func CategoryProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listingHandler(svc, logg, catalog.Service.ByCategory)
}

func BrandProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listingHandler(svc, logg, catalog.Service.ByBrand)
}

type listingLoader func(svc catalog.Service, ctx context.Context, id uint, params pagination.Params) (*catalog.Listing, error)

func listingHandler(svc catalog.Service, logg *logger.Logger, load listingLoader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listing, err := load(svc, r.Context(), id, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listing)
	}
}

func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.Detail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// FilterData narrows the catalog by facet and returns the rendered grid
// together with the matching rows.
func FilterData(svc catalog.Service, renderer *views.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || renderer == nil {
			catalogUnavailable(w, r, logg)
			return
		}

		var (
			in  catalog.FilterInput
			err error
		)
		facets := []struct {
			key  string
			dest *[]uint
		}{
			{"color", &in.Colors},
			{"category", &in.Categories},
			{"brand", &in.Brands},
			{"size", &in.Sizes},
		}
		for _, f := range facets {
			if *f.dest, err = validators.ParseQueryIDs(r, f.key); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		products, err := svc.Filter(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		html, err := renderer.ProductList(products)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render products"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"html": html, "products": products})
	}
}

// ProductsJSON dumps every product for API consumers.
func ProductsJSON(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			catalogUnavailable(w, r, logg)
			return
		}
		products, err := svc.AllProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}
