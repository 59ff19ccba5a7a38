package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/emporium-dev/emporium/api/routes"
	"github.com/emporium-dev/emporium/api/views"
	"github.com/emporium-dev/emporium/internal/admin"
	"github.com/emporium-dev/emporium/internal/auth"
	"github.com/emporium-dev/emporium/internal/cart"
	"github.com/emporium-dev/emporium/internal/catalog"
	"github.com/emporium-dev/emporium/internal/checkout"
	"github.com/emporium-dev/emporium/internal/customers"
	"github.com/emporium-dev/emporium/internal/orders"
	"github.com/emporium-dev/emporium/internal/payments"
	"github.com/emporium-dev/emporium/internal/users"
	"github.com/emporium-dev/emporium/pkg/auth/session"
	"github.com/emporium-dev/emporium/pkg/cartsession"
	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/db"
	"github.com/emporium-dev/emporium/pkg/logger"
	"github.com/emporium-dev/emporium/pkg/mailer"
	"github.com/emporium-dev/emporium/pkg/metrics"
	"github.com/emporium-dev/emporium/pkg/migrate"
	"github.com/emporium-dev/emporium/pkg/redis"
	"github.com/emporium-dev/emporium/pkg/stripe"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}
	cartSessions, err := cartsession.NewStore(redisClient, cfg.Session.CartSessionTTL)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	shopMetrics := metrics.NewShopMetrics(registry)

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Sessions: sessionManager,
		Metrics:  metrics.NewHTTPMetrics(registry),
		Gatherer: registry,
	}
	if err := wireServices(ctx, cfg, logg, dbClient, cartSessions, sessionManager, shopMetrics, &deps); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "addr": server.Addr}), "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func wireServices(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	cartSessions *cartsession.Store,
	sessionManager *session.Manager,
	shopMetrics *metrics.ShopMetrics,
	deps *routes.Dependencies,
) error {
	conn := dbClient.DB()
	ordersRepo := orders.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)

	var err error
	if deps.Views, err = views.New(cfg.Stripe.Currency); err != nil {
		return err
	}
	if deps.Catalog, err = catalog.NewService(catalog.NewRepository(conn)); err != nil {
		return err
	}
	if deps.Orders, err = orders.NewService(ordersRepo, shopMetrics); err != nil {
		return err
	}
	if deps.Cart, err = cart.NewService(cartRepo, dbClient, cartSessions, shopMetrics, logg); err != nil {
		return err
	}
	if deps.Checkout, err = checkout.NewService(dbClient, cartRepo, ordersRepo, deps.Cart, cartSessions, shopMetrics); err != nil {
		return err
	}

	// A nil Gateway interface disables online payments.
	var gateway payments.Gateway
	if cfg.Stripe.Enabled() {
		stripeClient, err := stripe.NewClient(ctx, cfg.Stripe, logg)
		if err != nil {
			return err
		}
		gateway = stripeClient
	} else {
		logg.Warn(ctx, "stripe not configured, online payments disabled")
	}
	if deps.Payments, err = payments.NewService(payments.ServiceParams{Orders: ordersRepo, Gateway: gateway, Metrics: shopMetrics}); err != nil {
		return err
	}

	userRepo := users.NewRepository(conn)
	if deps.Customers, err = customers.NewService(customers.ServiceParams{
		Customers: customers.NewRepository(conn),
		Users:     userRepo,
		Tx:        dbClient,
		Orders:    deps.Orders,
		Password:  cfg.Password,
	}); err != nil {
		return err
	}
	if deps.Auth, err = auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		Accounts:       deps.Customers,
		SessionManager: sessionManager,
		Mailer:         mailer.New(cfg.Mail, logg),
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		BaseURL:        cfg.App.BaseURL,
	}); err != nil {
		return err
	}

	if deps.Resources, err = admin.NewResources(conn, dbClient); err != nil {
		return err
	}
	deps.Admin, err = admin.NewService(deps.Resources, deps.Customers, deps.Orders)
	return err
}
