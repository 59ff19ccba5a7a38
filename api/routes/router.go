package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emporium-dev/emporium/api/controllers"
	"github.com/emporium-dev/emporium/api/middleware"
	"github.com/emporium-dev/emporium/api/views"
	"github.com/emporium-dev/emporium/internal/admin"
	"github.com/emporium-dev/emporium/internal/auth"
	"github.com/emporium-dev/emporium/internal/cart"
	"github.com/emporium-dev/emporium/internal/catalog"
	"github.com/emporium-dev/emporium/internal/checkout"
	"github.com/emporium-dev/emporium/internal/customers"
	"github.com/emporium-dev/emporium/internal/orders"
	"github.com/emporium-dev/emporium/internal/payments"
	"github.com/emporium-dev/emporium/pkg/auth/session"
	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/logger"
	"github.com/emporium-dev/emporium/pkg/metrics"
	"github.com/emporium-dev/emporium/pkg/redis"
)

// Dependencies is everything the HTTP surface needs. Nil services answer
// with an internal error instead of panicking.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
	Views    *views.Renderer

	Catalog   catalog.Service
	Cart      cart.Service
	Checkout  checkout.Service
	Payments  payments.Service
	Auth      auth.Service
	Customers customers.Service
	Orders    orders.Service
	Admin     admin.Service
	Resources *admin.Resources
}

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Authenticate(cfg.JWT, cfg.Session.AuthCookie, deps.Sessions, logg),
		middleware.CartSession(cfg.Session, logg),
	)
	if deps.Cart != nil {
		r.Use(middleware.BindCartCustomer(deps.Cart, logg))
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessChecks(deps)))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	mountStorefront(r, deps)
	mountAccounts(r, deps)
	mountAdmin(r, deps)

	return r
}

func readinessChecks(deps Dependencies) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{"database": deps.DB, "redis": nil}
	if deps.Redis != nil {
		checks["redis"] = deps.Redis
	}
	return checks
}

func mountStorefront(r chi.Router, deps Dependencies) {
	cfg, logg := deps.Config, deps.Logger

	r.Get("/", controllers.StorefrontHome(deps.Catalog, logg))
	r.Get("/search", controllers.CatalogSearch(deps.Catalog, logg))
	r.Get("/category-list", controllers.CategoryList(deps.Catalog, logg))
	r.Get("/brand-list", controllers.BrandList(deps.Catalog, logg))
	r.Get("/product-list", controllers.ProductList(deps.Catalog, logg))
	r.Get("/category-product-list/{id}", controllers.CategoryProducts(deps.Catalog, logg))
	r.Get("/brand-product-list/{id}", controllers.BrandProducts(deps.Catalog, logg))
	r.Get("/product/{slug}/{id}", controllers.ProductDetail(deps.Catalog, logg))
	r.Get("/filter-data", controllers.FilterData(deps.Catalog, deps.Views, logg))
	r.Get("/products/", controllers.ProductsJSON(deps.Catalog, logg))

	r.Get("/add-to-cart-{productId}/", controllers.AddToCart(deps.Cart, logg))
	r.Get(controllers.MyCartPath, controllers.MyCart(deps.Cart, logg))
	r.Get("/manage-cart/{id}", controllers.ManageCart(deps.Cart, logg))
	r.Get("/empty-cart/", controllers.EmptyCart(deps.Cart, logg))

	r.Get("/success", controllers.PaymentSuccess())
	r.Post("/success", controllers.PaymentSuccess())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCustomer())
		r.Get("/checkout/", controllers.CheckoutView(deps.Checkout, logg))
		submit := controllers.CheckoutSubmit(deps.Checkout, logg)
		if deps.Redis != nil {
			r.With(middleware.Idempotency(deps.Redis, cfg.Session.IdempotencyTTL, logg)).Post("/checkout/", submit)
		} else {
			r.Post("/checkout/", submit)
		}
		r.Get("/payment-request/", controllers.PaymentRequest(deps.Payments, logg))
		r.Get("/add-to-favourite-{id}", controllers.ToggleFavourite(deps.Customers, logg))
		r.Get("/profile/", controllers.CustomerProfile(deps.Customers, logg))
	})
}

func mountAccounts(r chi.Router, deps Dependencies) {
	cfg, logg := deps.Config, deps.Logger
	limits := cfg.AuthRateLimit

	loginPolicy := middleware.NewAuthRateLimitPolicy("login", limits.LoginWindow, limits.LoginIPLimit, "username", limits.LoginUsernameLimit)
	registerPolicy := middleware.NewAuthRateLimitPolicy("register", limits.RegisterWindow, limits.RegisterIPLimit, "username", limits.RegisterUsernameLimit)
	forgotPolicy := middleware.NewAuthRateLimitPolicy("forgot", limits.ForgotWindow, limits.ForgotIPLimit, "", 0)

	limited := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if deps.Redis == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, deps.Redis, logg)
	}

	r.Get(auth.LoginPath, controllers.AuthForm("login"))
	r.With(limited(loginPolicy)).Post(auth.LoginPath, controllers.AuthLogin(deps.Auth, cfg.Session, logg))
	r.Get("/register/", controllers.AuthForm("register"))
	r.With(limited(registerPolicy)).Post("/register/", controllers.AuthRegister(deps.Auth, cfg.Session, logg))
	r.Get("/logout/", controllers.AuthLogout(deps.Auth, cfg.Session, logg))
	r.Post("/logout/", controllers.AuthLogout(deps.Auth, cfg.Session, logg))

	r.With(limited(forgotPolicy)).Post(auth.ForgotPasswordPath, controllers.AuthForgotPassword(deps.Auth, logg))
	r.Get("/password-reset/{email}/{token}/", controllers.AuthResetLink(deps.Auth, logg))
	r.Post("/password-reset/{email}/{token}/", controllers.AuthResetPassword(deps.Auth, logg))
}

func mountAdmin(r chi.Router, deps Dependencies) {
	logg := deps.Logger
	res := deps.Resources

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())

		r.Get(auth.AdminHome, controllers.AdminDashboard(deps.Admin, logg))
		if res == nil {
			return
		}

		mountResource(r, "category", res.Categories, controllers.AdminCreate[admin.CategoryForm, models.Category], controllers.AdminUpdate[admin.CategoryForm, models.Category], logg)
		mountResource(r, "brand", res.Brands, controllers.AdminCreate[admin.BrandForm, models.Brand], controllers.AdminUpdate[admin.BrandForm, models.Brand], logg)
		mountResource(r, "color", res.Colors, controllers.AdminCreate[admin.ColorForm, models.Color], controllers.AdminUpdate[admin.ColorForm, models.Color], logg)
		mountResource(r, "size", res.Sizes, controllers.AdminCreate[admin.SizeForm, models.Size], controllers.AdminUpdate[admin.SizeForm, models.Size], logg)
		mountResource(r, "banner", res.Banners, controllers.AdminCreate[admin.BannerForm, models.Banner], controllers.AdminUpdate[admin.BannerForm, models.Banner], logg)
		mountResource(r, "product", res.Products, controllers.AdminCreate[admin.ProductForm, models.Product], controllers.AdminUpdate[admin.ProductForm, models.Product], logg)
		r.Get("/admin-add-product", controllers.AdminProductFormOptions(res, logg))

		attributesOf := func(a *models.ProductAttribute) string { return AttributeListPath(a.ProductID) }
		r.Get("/admin-pattr-list-{productId}", controllers.AdminProductAttributes(deps.Admin, logg))
		r.Get("/admin-add-product-attribute", controllers.AdminAttributeFormOptions(res, logg))
		r.Post("/admin-add-product-attribute", controllers.AdminCreate[admin.ProductAttributeForm, models.ProductAttribute](res.Attributes, attributesOf, logg))
		r.Get("/admin-edit-pattr-{id}", controllers.AdminGet(res.Attributes, logg))
		r.Post("/admin-edit-pattr-{id}", controllers.AdminUpdate[admin.ProductAttributeForm, models.ProductAttribute](res.Attributes, attributesOf, logg))
		r.Get("/delete-pattr/{id}", controllers.AdminDelete(res.Attributes, "/admin-product-list", logg))

		r.Get("/admin-user-list", controllers.AdminCustomerList(deps.Customers, logg))
		r.Post("/admin-add-user", controllers.AdminCustomerCreate(deps.Admin, "/admin-user-list", logg))
		r.Get("/admin-edit-user-{id}", controllers.AdminCustomerGet(deps.Customers, logg))
		r.Post("/admin-edit-user-{id}", controllers.AdminCustomerUpdate(deps.Admin, "/admin-user-list", logg))
		r.Get("/delete-customer/{id}", controllers.AdminCustomerDelete(deps.Customers, "/admin-user-list", logg))

		r.Get("/admin-order-list", controllers.AdminOrderList(deps.Orders, logg))
		r.Get("/admin-order-details/{id}", controllers.AdminOrderDetail(deps.Orders, logg))
		r.Post("/admin-order-status-change-{id}", controllers.AdminOrderStatusChange(deps.Admin, logg))
		r.Get("/delete-order/{id}", controllers.AdminOrderDelete(deps.Orders, "/admin-order-list", logg))
	})
}

// formHandler is an instantiated AdminCreate or AdminUpdate.
type formHandler[T any] func(*admin.Resource[T], controllers.RedirectFunc[T], *logger.Logger) http.HandlerFunc

// mountResource registers the list, add, edit and delete pages of one entity
// under the back office naming scheme.
func mountResource[T any](r chi.Router, slug string, res *admin.Resource[T], create, update formHandler[T], logg *logger.Logger) {
	list := "/admin-" + slug + "-list"
	toList := controllers.To[T](list)

	r.Get(list, controllers.AdminList(res, logg))
	r.Post("/admin-add-"+slug, create(res, toList, logg))
	r.Get("/admin-edit-"+slug+"-{id}", controllers.AdminGet(res, logg))
	r.Post("/admin-edit-"+slug+"-{id}", update(res, toList, logg))
	r.Get("/delete-"+slug+"/{id}", controllers.AdminDelete(res, list, logg))
}

// AttributeListPath is the back office page listing one product's variants.
func AttributeListPath(productID uint) string {
	return "/admin-pattr-list-" + strconv.FormatUint(uint64(productID), 10)
}
