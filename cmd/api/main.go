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

	"github.com/angelmondragon/soundstall-backend/api/controllers"
	"github.com/angelmondragon/soundstall-backend/api/routes"
	albums "github.com/angelmondragon/soundstall-backend/internal/albums"
	"github.com/angelmondragon/soundstall-backend/internal/cart"
	"github.com/angelmondragon/soundstall-backend/internal/gateways"
	"github.com/angelmondragon/soundstall-backend/internal/payments"
	products "github.com/angelmondragon/soundstall-backend/internal/products"
	"github.com/angelmondragon/soundstall-backend/internal/qna"
	"github.com/angelmondragon/soundstall-backend/internal/reviews"
	songs "github.com/angelmondragon/soundstall-backend/internal/songs"
	"github.com/angelmondragon/soundstall-backend/internal/subscriptions"
	stripewebhook "github.com/angelmondragon/soundstall-backend/internal/webhooks/stripe"
	"github.com/angelmondragon/soundstall-backend/pkg/config"
	"github.com/angelmondragon/soundstall-backend/pkg/db"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
	"github.com/angelmondragon/soundstall-backend/pkg/metrics"
	"github.com/angelmondragon/soundstall-backend/pkg/migrate"
	"github.com/angelmondragon/soundstall-backend/pkg/mongodb"
	pkgpaypal "github.com/angelmondragon/soundstall-backend/pkg/paypal"
	pkgrazorpay "github.com/angelmondragon/soundstall-backend/pkg/razorpay"
	"github.com/angelmondragon/soundstall-backend/pkg/redis"
	pkgstripe "github.com/angelmondragon/soundstall-backend/pkg/stripe"
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
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	shutdown := func() {
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		if errs != nil {
			logg.Error(context.Background(), "error releasing resources", errs)
		}
	}
	fail := func(msg string, err error) {
		logg.Error(context.Background(), msg, err)
		shutdown()
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fail("failed to bootstrap database", err)
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fail("failed to run dev migrations", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		fail("failed to bootstrap redis", err)
	}
	closers = append(closers, redisClient.Close)

	readiness := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	productRepo := products.NewRepository(dbClient.DB())

	cartRepo := cart.NewRepository(dbClient.DB())
	if cfg.Cart.UsesMongo() {
		mongoClient, err := mongodb.New(ctx, cfg.Mongo, logg)
		if err != nil {
			fail("failed to bootstrap mongo", err)
		}
		closers = append(closers, mongoClient.Close)
		readiness["mongo"] = mongoClient

		mongoCart := cart.NewMongoRepository(mongoClient.Database())
		if err := mongoCart.CreateIndexes(ctx); err != nil {
			fail("failed to create cart indexes", err)
		}
		cartRepo = mongoCart
	}

	stripeClient := optionalClient[pkgstripe.Client](ctx, logg, "stripe", pkgstripe.ErrNotConfigured)(pkgstripe.NewClient(ctx, cfg.Stripe, logg))
	paypalClient := optionalClient[pkgpaypal.Client](ctx, logg, "paypal", pkgpaypal.ErrNotConfigured)(pkgpaypal.NewClient(ctx, cfg.PayPal, cfg.Payments.ProviderTimeout, logg))
	razorpayClient := optionalClient[pkgrazorpay.Client](ctx, logg, "razorpay", pkgrazorpay.ErrNotConfigured)(pkgrazorpay.NewClient(ctx, cfg.Razorpay, logg))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	gatewayMetrics := metrics.NewGatewayMetrics(registry)

	timeout := cfg.Payments.ProviderTimeout
	factory, err := gateways.NewFactory(
		gateways.Instrument(gateways.NewStripeGateway(stripeClient, timeout), gatewayMetrics, logg),
		gateways.Instrument(gateways.NewPayPalGateway(paypalClient, cfg.Payments.SuccessURL(), cfg.Payments.CancelURL(), timeout), gatewayMetrics, logg),
		gateways.Instrument(gateways.NewRazorpayGateway(razorpayClient, timeout), gatewayMetrics, logg),
	)
	if err != nil {
		fail("failed to build gateway factory", err)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:         payments.NewRepository(dbClient.DB()),
		Gateways:     factory,
		HistoryLimit: cfg.Payments.HistoryLimit,
		Logger:       logg,
	})
	if err != nil {
		fail("failed to create payments service", err)
	}

	customers, subs := subscriptions.StripeClients(stripeClient)
	subscriptionService := subscriptions.NewService(subscriptions.ServiceParams{
		Customers:     customers,
		Subscriptions: subs,
		Timeout:       timeout,
	})

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Payments: paymentService,
		Logger:   logg,
	})
	if err != nil {
		fail("failed to create stripe webhook service", err)
	}
	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, stripewebhook.DefaultEventTTL, "stripe-webhook")
	if err != nil {
		fail("failed to create stripe webhook guard", err)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:     cartRepo,
		Products: productRepo,
		Logger:   logg,
	})
	if err != nil {
		fail("failed to create cart service", err)
	}

	productService, err := products.NewService(productRepo)
	if err != nil {
		fail("failed to create product service", err)
	}
	reviewService, err := reviews.NewService(reviews.NewRepository(dbClient.DB()), productRepo)
	if err != nil {
		fail("failed to create review service", err)
	}
	questionService, err := qna.NewService(qna.NewRepository(dbClient.DB()), productRepo)
	if err != nil {
		fail("failed to create question service", err)
	}
	songRepo := songs.NewRepository(dbClient.DB())
	songService, err := songs.NewService(songRepo)
	if err != nil {
		fail("failed to create song service", err)
	}
	albumService, err := albums.NewService(albums.NewRepository(dbClient.DB()), songRepo)
	if err != nil {
		fail("failed to create album service", err)
	}

	handler := routes.NewRouter(cfg, logg, routes.Infra{
		Readiness:     readiness,
		Idempotency:   redisClient,
		RateLimiter:   redisClient,
		Gatherer:      registry,
		HTTPMetrics:   metrics.NewHTTPMetrics(registry),
		StripeSigning: stripeClient,
		WebhookGuard:  webhookGuard,
	}, routes.Services{
		Payments:      paymentService,
		Subscriptions: subscriptionService,
		Cart:          cartService,
		Products:      productService,
		Reviews:       reviewService,
		Questions:     questionService,
		Songs:         songService,
		Albums:        albumService,
		StripeWebhook: webhookService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"cart_store": cfg.Cart.Store,
		"gateways":   len(factory.Available()),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fail("api server stopped unexpectedly", err)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
	}
	shutdown()
}

// optionalClient tolerates missing provider credentials: the gateway stays
// listed but unconfigured. Any other bootstrap error is fatal.
func optionalClient[T any](ctx context.Context, logg *logger.Logger, provider string, notConfigured error) func(*T, error) *T {
	return func(client *T, err error) *T {
		if err == nil {
			return client
		}
		if errors.Is(err, notConfigured) {
			logg.Warn(logg.WithGateway(ctx, provider), "payment gateway not configured")
			return nil
		}
		logg.Error(logg.WithGateway(ctx, provider), "failed to bootstrap payment gateway", err)
		os.Exit(1)
		return nil
	}
}
