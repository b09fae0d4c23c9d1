package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/soundstall-backend/api/controllers"
	cartcontrollers "github.com/angelmondragon/soundstall-backend/api/controllers/cart"
	paymentcontrollers "github.com/angelmondragon/soundstall-backend/api/controllers/payments"
	webhookcontrollers "github.com/angelmondragon/soundstall-backend/api/controllers/webhooks"
	"github.com/angelmondragon/soundstall-backend/api/middleware"
	albums "github.com/angelmondragon/soundstall-backend/internal/albums"
	"github.com/angelmondragon/soundstall-backend/internal/cart"
	"github.com/angelmondragon/soundstall-backend/internal/payments"
	products "github.com/angelmondragon/soundstall-backend/internal/products"
	"github.com/angelmondragon/soundstall-backend/internal/qna"
	"github.com/angelmondragon/soundstall-backend/internal/reviews"
	songs "github.com/angelmondragon/soundstall-backend/internal/songs"
	"github.com/angelmondragon/soundstall-backend/internal/subscriptions"
	"github.com/angelmondragon/soundstall-backend/pkg/config"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
	"github.com/angelmondragon/soundstall-backend/pkg/metrics"
	"github.com/angelmondragon/soundstall-backend/pkg/redis"
)

// Services groups the domain services exposed over HTTP.
type Services struct {
	Payments      payments.Service
	Subscriptions subscriptions.Service
	Cart          cart.Service
	Products      products.Service
	Reviews       reviews.Service
	Questions     qna.Service
	Songs         songs.Service
	Albums        albums.Service
	StripeWebhook webhookcontrollers.StripeWebhookService
}

// Infra carries the shared clients the middleware stack and probes rely on.
type Infra struct {
	Readiness     map[string]controllers.Pinger
	Idempotency   redis.IdempotencyStore
	RateLimiter   redis.RateLimiter
	Gatherer      prometheus.Gatherer
	HTTPMetrics   *metrics.HTTPMetrics
	StripeSigning webhookcontrollers.SigningSecretSource
	WebhookGuard  webhookcontrollers.EventGuard
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(infra.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	intentPolicy := middleware.NewRateLimitPolicy(
		"payment_intents",
		cfg.RateLimit.PaymentIntentWindow,
		cfg.RateLimit.PaymentIntentLimit,
	)
	idempotent := middleware.Idempotency(infra.Idempotency, middleware.IdempotencyPolicy{
		TTL:     cfg.Payments.IdempotencyTTL,
		LockTTL: cfg.Payments.IdempotencyLock,
	}, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, infra.Readiness, logg))
	})

	if infra.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(svc.StripeWebhook, infra.StripeSigning, infra.WebhookGuard, logg))

		// public catalog reads
		r.Get("/payments/gateways", paymentcontrollers.Gateways(svc.Payments, logg))
		r.Get("/products/artist/{artistId}", controllers.ProductListByArtist(svc.Products, logg))
		r.Get("/products/{productId}", controllers.ProductGet(svc.Products, logg))
		r.Get("/products/{productId}/reviews", controllers.ReviewList(svc.Reviews, logg))
		r.Get("/products/{productId}/questions", controllers.QuestionList(svc.Questions, logg))
		r.Get("/songs", controllers.SongList(svc.Songs, logg))
		r.Get("/songs/search", controllers.SongSearch(svc.Songs, logg))
		r.Get("/songs/title/{title}", controllers.SongGetByTitle(svc.Songs, logg))
		r.Get("/songs/artist/{artistId}", controllers.SongListByArtist(svc.Songs, logg))
		r.Get("/songs/{songId}", controllers.SongGet(svc.Songs, logg))
		r.Get("/albums", controllers.AlbumList(svc.Albums, logg))
		r.Get("/albums/{albumId}", controllers.AlbumGet(svc.Albums, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.With(
				middleware.UserRateLimit(intentPolicy, infra.RateLimiter, logg),
				idempotent,
			).Post("/payments/intents", paymentcontrollers.CreateIntent(svc.Payments, logg))
			r.With(idempotent).Post("/payments/confirm", paymentcontrollers.Confirm(svc.Payments, logg))
			r.Get("/payments/history", paymentcontrollers.History(svc.Payments, logg))
			r.With(idempotent).Post("/payments/subscriptions", paymentcontrollers.SubscriptionCreate(svc.Subscriptions, logg))
			r.With(idempotent).Post("/payments/subscriptions/{subscriptionId}/cancel", paymentcontrollers.SubscriptionCancel(svc.Subscriptions, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Post("/add", cartcontrollers.CartAdd(svc.Cart, logg))
				r.Get("/items", cartcontrollers.CartItems(svc.Cart, logg))
				r.Put("/update", cartcontrollers.CartUpdate(svc.Cart, logg))
				r.Delete("/remove/{lineItemId}", cartcontrollers.CartRemove(svc.Cart, logg))
				r.Delete("/clear", cartcontrollers.CartClear(svc.Cart, logg))
				r.Get("/count", cartcontrollers.CartCount(svc.Cart, logg))
			})

			r.Post("/products", controllers.ProductCreate(svc.Products, logg))
			r.Put("/products/{productId}", controllers.ProductUpdate(svc.Products, logg))
			r.Delete("/products/{productId}", controllers.ProductDelete(svc.Products, logg))
			r.Post("/products/{productId}/reviews", controllers.ReviewAdd(svc.Reviews, logg))
			r.Post("/products/{productId}/questions", controllers.QuestionAsk(svc.Questions, logg))
			r.Post("/products/{productId}/questions/{questionId}/answer", controllers.QuestionAnswer(svc.Questions, logg))

			r.Post("/songs", controllers.SongCreate(svc.Songs, logg))
			r.Put("/songs/{songId}", controllers.SongUpdate(svc.Songs, logg))
			r.Delete("/songs/{songId}", controllers.SongDelete(svc.Songs, logg))
			r.Post("/albums/tracks", controllers.AlbumAddTrack(svc.Albums, logg))
		})
	})

	return r
}
