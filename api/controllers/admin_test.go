package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/emporium-dev/emporium/internal/admin"
	"github.com/emporium-dev/emporium/pkg/db/dbtest"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
)

type stubAdminService struct {
	admin.Service
	status admin.OrderStatusForm
}

func (s *stubAdminService) ChangeOrderStatus(_ context.Context, id uint, form admin.OrderStatusForm) (*models.Order, error) {
	s.status = form
	if id == 404 {
		return nil, pkgerrors.NotFound("order")
	}
	return &models.Order{ID: id, OrderStatus: enums.OrderStatus(form.Status)}, nil
}

func TestAdminProductRoutesAgainstDatabase(t *testing.T) {
	client, conn := dbtest.Client(t)
	resources, err := admin.NewResources(conn, client)
	require.NoError(t, err)
	seed := dbtest.SeedCatalog(t, conn)

	r := chi.NewRouter()
	r.Post("/admin-add-product", AdminCreate[admin.ProductForm](resources.Products, To[models.Product]("/admin-product-list"), nil))
	r.Post("/admin-edit-product-{id}", AdminUpdate[admin.ProductForm](resources.Products, To[models.Product]("/admin-product-list"), nil))
	r.Get("/admin-edit-product-{id}", AdminGet(resources.Products, nil))

	body := `{"title":"Trail Runner","category_id":` + strconv.Itoa(int(seed.Category.ID)) + `,"brand_id":` + strconv.Itoa(int(seed.Brand.ID)) + `,"price":499}`
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/admin-add-product", strings.NewReader(body)))
	require.Equal(t, http.StatusSeeOther, resp.Code, resp.Body.String())
	require.Equal(t, "/admin-product-list", resp.Header().Get("Location"))

	var product models.Product
	require.NoError(t, conn.Where("slug = ?", "trail-runner").First(&product).Error)

	update := `{"title":"Trail Runner","slug":"trail-runner","category_id":9999,"brand_id":` + strconv.Itoa(int(seed.Brand.ID)) + `}`
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/admin-edit-product-"+strconv.Itoa(int(product.ID)), strings.NewReader(update)))
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/admin-edit-product-"+strconv.Itoa(int(product.ID)), nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"title":"Shoes"`)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/admin-edit-product-9999", nil))
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAdminOrderStatusChange(t *testing.T) {
	svc := &stubAdminService{}
	r := chi.NewRouter()
	r.Post("/admin-order-status-change-{id}", AdminOrderStatusChange(svc, nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/admin-order-status-change-5", strings.NewReader(`{"status":"Order Completed"}`)))
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d: %s", resp.Code, resp.Body.String())
	}
	if loc := resp.Header().Get("Location"); loc != AdminOrderDetailPath(5) {
		t.Fatalf("unexpected location %q", loc)
	}
	if svc.status.Status != "Order Completed" {
		t.Fatalf("unexpected form %+v", svc.status)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/admin-order-status-change-404", strings.NewReader(`{"status":"Order Completed"}`)))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/admin-order-status-change-5", strings.NewReader(`{}`)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminHandlersWithoutResource(t *testing.T) {
	resp := httptest.NewRecorder()
	AdminList[models.Brand](nil, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/admin-brand-list", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
