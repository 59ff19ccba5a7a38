package controllers

import (
	"net/http"
	"strconv"

	"github.com/emporium-dev/emporium/api/responses"
	"github.com/emporium-dev/emporium/api/validators"
	"github.com/emporium-dev/emporium/internal/admin"
	"github.com/emporium-dev/emporium/internal/customers"
	"github.com/emporium-dev/emporium/internal/orders"
	"github.com/emporium-dev/emporium/pkg/enums"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/logger"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

// AdminOrderDetailPath is the back office page of one order.
func AdminOrderDetailPath(orderID uint) string {
	return "/admin-order-details/" + strconv.FormatUint(uint64(orderID), 10)
}

// RedirectFunc picks where the browser goes after a row was written.
type RedirectFunc[T any] func(row *T) string

// To always redirects to path.
func To[T any](path string) RedirectFunc[T] {
	return func(*T) string { return path }
}

func adminUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable"))
}

// AdminList pages through one catalog entity.
func AdminList[T any](res *admin.Resource[T], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if res == nil {
			adminUnavailable(w, r, logg, "admin resource")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := res.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminGet loads one row for the edit form.
func AdminGet[T any](res *admin.Resource[T], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if res == nil {
			adminUnavailable(w, r, logg, "admin resource")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := res.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// AdminCreate decodes form F and inserts a new row.
func AdminCreate[F admin.Form[T], T any](res *admin.Resource[T], next RedirectFunc[T], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if res == nil {
			adminUnavailable(w, r, logg, "admin resource")
			return
		}
		var form F
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := res.Create(r.Context(), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithField(r.Context(), "resource", res.Name()), "admin.created")
		}
		responses.WriteRedirect(w, next(row), row)
	}
}

// AdminUpdate replaces the editable fields of an existing row.
func AdminUpdate[F admin.Form[T], T any](res *admin.Resource[T], next RedirectFunc[T], logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if res == nil {
			adminUnavailable(w, r, logg, "admin resource")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var form F
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := res.Update(r.Context(), id, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRedirect(w, next(row), row)
	}
}

// AdminDelete removes a row and returns to the referring page.
func AdminDelete[T any](res *admin.Resource[T], fallback string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if res == nil {
			adminUnavailable(w, r, logg, "admin resource")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := res.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithFields(r.Context(), map[string]any{"resource": res.Name(), "id": id}), "admin.deleted")
		}
		responses.WriteRedirect(w, backTo(r, fallback), nil)
	}
}

// AdminProductFormOptions lists the categories and brands a product can use.
func AdminProductFormOptions(resources *admin.Resources, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resources == nil {
			adminUnavailable(w, r, logg, "admin resources")
			return
		}
		params := pagination.Params{Limit: pagination.MaxLimit}
		categories, err := resources.Categories.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		brands, err := resources.Brands.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories.Items, "brands": brands.Items})
	}
}

// AdminAttributeFormOptions lists the colors and sizes a variant can use.
func AdminAttributeFormOptions(resources *admin.Resources, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resources == nil {
			adminUnavailable(w, r, logg, "admin resources")
			return
		}
		params := pagination.Params{Limit: pagination.MaxLimit}
		colors, err := resources.Colors.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sizes, err := resources.Sizes.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"colors": colors.Items, "sizes": sizes.Items})
	}
}

func AdminDashboard(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "admin service")
			return
		}
		dash, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dash)
	}
}

// AdminProductAttributes lists the variants of one product.
func AdminProductAttributes(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "admin service")
			return
		}
		productID, err := validators.ParseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, page, err := svc.ProductAttributes(r.Context(), productID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product": product, "attributes": page})
	}
}

func AdminCustomerList(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "customers service")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminCustomerGet(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "customers service")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

// AdminCustomerCreate registers a customer from the back office. A generated
// password is returned once in the response.
func AdminCustomerCreate(svc admin.Service, listPath string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "admin service")
			return
		}
		var form admin.CustomerForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateCustomer(r.Context(), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRedirect(w, listPath, created)
	}
}

func AdminCustomerUpdate(svc admin.Service, listPath string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "admin service")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var form admin.CustomerUpdateForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer, err := svc.UpdateCustomer(r.Context(), id, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRedirect(w, listPath, customer)
	}
}

func AdminCustomerDelete(svc customers.Service, fallback string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "customers service")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRedirect(w, backTo(r, fallback), nil)
	}
}

func AdminOrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "orders service")
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdminOrderDetail returns the order with its cart lines and the statuses it
// can be moved to.
func AdminOrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "orders service")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Detail(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"order": order, "statuses": enums.OrderStatuses()})
	}
}

func AdminOrderStatusChange(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "admin service")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var form admin.OrderStatusForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.ChangeOrderStatus(r.Context(), id, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRedirect(w, backTo(r, AdminOrderDetailPath(order.ID)), order)
	}
}

func AdminOrderDelete(svc orders.Service, fallback string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			adminUnavailable(w, r, logg, "orders service")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteRedirect(w, backTo(r, fallback), nil)
	}
}
