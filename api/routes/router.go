package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/martinezjavi/ridepay-backend/api/controllers"
	paymentcontrollers "github.com/martinezjavi/ridepay-backend/api/controllers/payments"
	routeplancontrollers "github.com/martinezjavi/ridepay-backend/api/controllers/routeplan"
	webhookcontrollers "github.com/martinezjavi/ridepay-backend/api/controllers/webhooks"
	"github.com/martinezjavi/ridepay-backend/api/middleware"
	stripewebhook "github.com/martinezjavi/ridepay-backend/internal/webhooks/stripe"
	"github.com/martinezjavi/ridepay-backend/pkg/config"
	"github.com/martinezjavi/ridepay-backend/pkg/db"
	"github.com/martinezjavi/ridepay-backend/pkg/logger"
	"github.com/martinezjavi/ridepay-backend/pkg/redis"
	"github.com/martinezjavi/ridepay-backend/pkg/stripe"
)

// RouterParams groups everything the HTTP surface depends on.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	PaymentService  paymentcontrollers.PaymentService
	MinSegmentPrice decimal.Decimal
	StripeClient    *stripe.Client
	WebhookService  *stripewebhook.Service
	WebhookGuard    *stripewebhook.IdempotencyGuard
	MetricsRegistry *prometheus.Registry
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		// Bare /health answers as liveness for checkers that don't distinguish.
		r.Get("/", controllers.HealthLive(cfg))
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, controllers.ReadinessDeps{
			DB:    params.DB,
			Redis: params.Redis,
		}, logg))
	})

	gatherer := params.MetricsGatherer
	if gatherer == nil && params.MetricsRegistry != nil {
		gatherer = params.MetricsRegistry
	}
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(params.WebhookService, params.StripeClient, params.WebhookGuard, logg))
	})

	r.Route("/api/v1/payments", func(r chi.Router) {
		r.With(middleware.Auth(cfg.JWT, logg)).
			Post("/", paymentcontrollers.CreatePayment(params.PaymentService, logg))

		// Internal service trust: ride completion flows call these, guarded
		// by the redis-backed Idempotency-Key middleware.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(params.Redis, logg))
			r.Post("/capture", paymentcontrollers.CapturePayment(params.PaymentService, logg))
			r.Post("/cancel", paymentcontrollers.CancelPayment(params.PaymentService, logg))
			r.Post("/refund", paymentcontrollers.RefundPayment(params.PaymentService, logg))
		})
	})

	r.Route("/api/v1/routes", func(r chi.Router) {
		r.Post("/eta", routeplancontrollers.EstimateETA(logg))
		r.Post("/segment-price", routeplancontrollers.SegmentPrice(params.MinSegmentPrice, logg))
	})

	return r
}
