package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"gorm.io/gorm"
)

type RouterDeps struct {
	Config      *config.Config
	Logger      *slog.Logger
	DB          *gorm.DB
	Gatherer    prometheus.Gatherer
	RateLimiter *middleware.RateLimiter

	Users      *UserHandler
	Challenges *ChallengeHandler
	Queries    *QueryHandler
	SMSWebhook *SMSWebhookHandler
}

// NewRouter wires every route. /health and /metrics live outside /api/v1.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(d.Logger))
	r.Use(middleware.MonitorMiddleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   d.Config.CORS.AllowedOrigins,
		AllowedMethods:   d.Config.CORS.AllowedMethods,
		AllowedHeaders:   d.Config.CORS.AllowedHeaders,
		ExposedHeaders:   d.Config.CORS.ExposedHeaders,
		AllowCredentials: d.Config.CORS.AllowCredentials,
		MaxAge:           d.Config.CORS.MaxAge,
	}).Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users", d.Users.Register)
		r.Post("/users/confirm", d.Users.Confirm)
		r.Post("/auth/login", d.Users.Login)

		r.Group(func(r chi.Router) {
			if d.RateLimiter != nil {
				r.Use(d.RateLimiter.Middleware)
			}
			r.Use(middleware.WebhookSignatureMiddleware(d.Config.Webhook.Secret, d.Config.Webhook.Tolerance, nil))
			r.Post("/webhooks/sms", d.SMSWebhook.ReceiveSMS)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuthMiddleware(d.Config))

			r.Get("/users/me", d.Users.GetMe)

			r.Route("/challenges", func(r chi.Router) {
				r.Get("/", d.Challenges.ListChallenges)
				r.Post("/", d.Challenges.PostChallenge)
				r.Get("/{challenge_id}", d.Challenges.GetChallenge)
				r.Patch("/{challenge_id}", d.Challenges.PatchChallenge)
				r.Delete("/{challenge_id}", d.Challenges.DeleteChallenge)
				r.Post("/{challenge_id}/queries", d.Challenges.PostChallengeQuery)
			})

			r.Route("/queries", func(r chi.Router) {
				r.Get("/latest", d.Queries.GetLatestQuery)
				r.Post("/{query_id}/attempts", d.Queries.PostAttempt)
			})
		})
	})

	if d.DB != nil {
		r.Get("/health", healthHandler(d.DB))
	}
	if d.Gatherer != nil {
		r.With(middleware.BasicAuthMiddleware(d.Config.Metrics.Username, d.Config.Metrics.Password)).
			Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func healthHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.GetLogger(r.Context())
		sqlDB, err := db.DB()
		if err != nil {
			logger.Error("Health check failed: could not get DB object", "error", err)
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		if err := sqlDB.PingContext(r.Context()); err != nil {
			logger.Error("Health check failed: could not ping DB", "error", err)
			http.Error(w, "Health check failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
