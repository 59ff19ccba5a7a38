package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/emporium-dev/emporium/api/views"
	"github.com/emporium-dev/emporium/internal/admin"
	"github.com/emporium-dev/emporium/internal/cart"
	"github.com/emporium-dev/emporium/internal/catalog"
	pkgAuth "github.com/emporium-dev/emporium/pkg/auth"
	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/db/dbtest"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
	"github.com/emporium-dev/emporium/pkg/logger"
	"github.com/emporium-dev/emporium/pkg/metrics"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubCatalog struct {
	catalog.Service
	filtered catalog.FilterInput
	products []models.Product
}

func (s *stubCatalog) Filter(_ context.Context, in catalog.FilterInput) ([]models.Product, error) {
	s.filtered = in
	return s.products, nil
}

type stubCart struct {
	cart.Service
	sessionKey string
	productID  uint
	itemID     uint
	action     enums.CartAction
}

func (s *stubCart) Adjust(_ context.Context, key string, itemID uint, action enums.CartAction) (*models.Cart, error) {
	s.sessionKey, s.itemID, s.action = key, itemID, action
	return &models.Cart{ID: 7}, nil
}

func (s *stubCart) AddItem(_ context.Context, key string, productID uint) (*cart.AddResult, error) {
	s.sessionKey, s.productID = key, productID
	return &cart.AddResult{CartID: 7, Total: 100, Notice: cart.AddedNotice, NewCart: true}, nil
}

type stubAdmin struct {
	admin.Service
}

func (stubAdmin) Dashboard(context.Context) (*admin.Dashboard, error) {
	return &admin.Dashboard{Customers: 2, Products: 5}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "emporium", ExpirationMinutes: 60},
		Session: config.SessionConfig{
			AuthCookie:     "emporium_session",
			CartCookie:     "emporium_sid",
			CartSessionTTL: time.Hour,
			IdempotencyTTL: time.Hour,
		},
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func bearer(t *testing.T, cfg *config.Config, role enums.Role, customerID *uint) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: 1, CustomerID: customerID, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func newTestRouter(t *testing.T, mutate func(*Dependencies)) (http.Handler, Dependencies) {
	t.Helper()
	deps := Dependencies{
		Config:   testConfig(),
		Logger:   testLogger(),
		DB:       stubPinger{},
		Sessions: stubSessions{},
	}
	if mutate != nil {
		mutate(&deps)
	}
	return NewRouter(deps), deps
}

func TestHealthLive(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if resp.Header().Get("X-Emporium-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-Emporium-Env"))
	}
}

func TestHealthReadyFailsWhenDatabaseIsDown(t *testing.T) {
	router, _ := newTestRouter(t, func(d *Dependencies) { d.DB = stubPinger{err: errors.New("connection refused")} })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminPagesRedirectAnonymousCallers(t *testing.T) {
	router, _ := newTestRouter(t, func(d *Dependencies) { d.Admin = stubAdmin{} })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/admin-home/", nil))
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/login/?next=%2Fadmin-home%2F" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestAdminDashboardRequiresAdminRole(t *testing.T) {
	router, deps := newTestRouter(t, func(d *Dependencies) { d.Admin = stubAdmin{} })
	customerID := uint(3)

	req := httptest.NewRequest(http.MethodGet, "/admin-home/", nil)
	req.Header.Set("Authorization", bearer(t, deps.Config, enums.RoleCustomer, &customerID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("customer: expected 303 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin-home/", nil)
	req.Header.Set("Authorization", bearer(t, deps.Config, enums.RoleAdmin, nil))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("admin: expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data admin.Dashboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.EqualValues(t, 5, envelope.Data.Products)
}

func TestCheckoutRequiresCustomer(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/checkout/", nil))
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", resp.Code)
	}
	if loc := resp.Header().Get("Location"); loc != "/login/?next=%2Fcheckout%2F" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestAddToCartUsesMintedCartSession(t *testing.T) {
	stub := &stubCart{}
	router, _ := newTestRouter(t, func(d *Dependencies) { d.Cart = stub })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/add-to-cart-42/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	require.EqualValues(t, 42, stub.productID)
	require.NotEmpty(t, stub.sessionKey)

	var cookie *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == "emporium_sid" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	require.Equal(t, stub.sessionKey, cookie.Value)
}

func TestManageCartUnknownActionRedirectsToCart(t *testing.T) {
	stub := &stubCart{}
	router, _ := newTestRouter(t, func(d *Dependencies) { d.Cart = stub })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/manage-cart/5?action=foo", nil))
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d: %s", resp.Code, resp.Body.String())
	}
	require.Equal(t, "/my-cart/", resp.Header().Get("Location"))
	require.EqualValues(t, 5, stub.itemID)
	require.Equal(t, enums.CartAction("foo"), stub.action)
}

func TestFilterDataParsesFacets(t *testing.T) {
	price := int64(250)
	stub := &stubCatalog{products: []models.Product{{ID: 1, Title: "Trail Runner", Price: &price}}}
	renderer, err := views.New("INR")
	require.NoError(t, err)
	router, _ := newTestRouter(t, func(d *Dependencies) {
		d.Catalog = stub
		d.Views = renderer
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/filter-data?color[]=1&color[]=2&brand=3,4", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	require.Equal(t, []uint{1, 2}, stub.filtered.Colors)
	require.Equal(t, []uint{3, 4}, stub.filtered.Brands)
	require.Empty(t, stub.filtered.Sizes)

	var envelope struct {
		Data struct {
			HTML string `json:"html"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Contains(t, envelope.Data.HTML, "Trail Runner")
}

func TestAdminCategoryCrudRoutes(t *testing.T) {
	client, conn := dbtest.Client(t)
	resources, err := admin.NewResources(conn, client)
	require.NoError(t, err)
	router, deps := newTestRouter(t, func(d *Dependencies) { d.Resources = resources })
	auth := bearer(t, deps.Config, enums.RoleAdmin, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin-add-category", strings.NewReader(`{"title":"Bags"}`))
	req.Header.Set("Authorization", auth)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("create: expected 303 got %d: %s", resp.Code, resp.Body.String())
	}
	require.Equal(t, "/admin-category-list", resp.Header().Get("Location"))

	var created models.Category
	require.NoError(t, conn.Where("title = ?", "Bags").First(&created).Error)

	req = httptest.NewRequest(http.MethodPost, "/admin-add-category", strings.NewReader(`{"title":""}`))
	req.Header.Set("Authorization", auth)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("invalid: expected 400 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/delete-category/"+strconv.FormatUint(uint64(created.ID), 10), nil)
	req.Header.Set("Authorization", auth)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("delete: expected 303 got %d: %s", resp.Code, resp.Body.String())
	}
	require.Equal(t, "/admin-category-list", resp.Header().Get("Location"))
}

func TestMetricsEndpointExposesRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	router, _ := newTestRouter(t, func(d *Dependencies) {
		d.Metrics = metrics.NewHTTPMetrics(reg)
		d.Gatherer = reg
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	require.Contains(t, resp.Body.String(), "http_requests_total")
	require.Contains(t, resp.Body.String(), `route="/health/live"`)
}
