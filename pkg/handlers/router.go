package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/alexkh/token-ledger/pkg/middleware"
)

// NewRouter wires the full HTTP surface. The webhook route stays outside the
// auth group: the provider authenticates via the body signature, not a bearer
// token. CORS is permissive because the gateway in front narrows it.
func NewRouter(h *ApiHandler, authSecret string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewStructuredLogger(logger))
	r.Use(cors.AllowAll().Handler)

	r.Post("/api/webhooks/payments", h.PaymentWebhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authentication(authSecret, logger))

		r.Post("/api/topups", h.CreateTopup)
		r.Post("/api/bonuses/daily", h.ClaimDailyBonus)
		r.Post("/api/bonuses/streak", h.ClaimStreakBonus)
		r.Post("/api/spends", h.CreateSpend)
		r.Post("/api/profiles", h.CreateProfile)
		r.Get("/api/profiles/{userID}", h.GetProfile)
		r.Get("/api/profiles/{userID}/transactions", h.ListTransactions)
	})

	return r
}
