package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pawlink/pawlink-backend/internal/api/handlers"
	"github.com/pawlink/pawlink-backend/internal/api/httpx"
	"github.com/pawlink/pawlink-backend/internal/auth"
	"github.com/pawlink/pawlink-backend/internal/config"
	"github.com/pawlink/pawlink-backend/internal/metrics"
	"github.com/pawlink/pawlink-backend/internal/middleware"
	"github.com/pawlink/pawlink-backend/internal/models"
	"github.com/pawlink/pawlink-backend/internal/services"
)

func NewRouter(cfg config.Config, log *slog.Logger, tm *auth.TokenManager, us *services.UserService, ls *services.LedgerService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.RateLimit(cfg.RateRPS), middleware.HTTPMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	ah := handlers.NewAuthHandler(us, tm)
	wh := handlers.NewWebhookHandler(cfg.PaystackSecret, ls, log)
	bh := handlers.NewBillingHandler(ls, log)
	am := middleware.NewAuthMiddleware(tm)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)
		r.Post("/auth/refresh", ah.Refresh)

		// processor-facing, authenticated by signature rather than JWT
		r.Post("/webhooks/paystack/verify", wh.Verify)
		r.Post("/webhooks/paystack", wh.Ingest)

		r.Group(func(r chi.Router) {
			r.Use(am.Auth)
			r.Get("/billing", bh.Billing)
			r.Get("/transactions", bh.Transactions)
			r.With(middleware.RequireRole(models.RoleAdmin)).Get("/users", ah.ListUsers)
		})
	})

	return r
}
