// Package rest exposes the campaign wizard and checkout pipeline over HTTP.
//
// All routes require a bearer token whose subject is the user id; every
// session operation is scoped to that user. Error responses carry the
// machine-readable domain code so clients can branch without parsing
// messages.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/impulso-music/impulso/internal/services/campaign/service"
)

// NewRouter builds the campaign HTTP API around a service.
func NewRouter(svc *service.Service, jwtSecret []byte) http.Handler {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(requireAuth(jwtSecret))

		r.Route("/wizards", func(r chi.Router) {
			r.Post("/", h.startWizard)
			r.Route("/{wizardID}", func(r chi.Router) {
				r.Get("/", h.getWizard)
				r.Post("/track", h.selectTrack)
				r.Patch("/targeting", h.updateTargeting)
				r.Post("/budget", h.setBudget)
				r.Post("/observation", h.setObservation)
				r.Post("/advance", h.advance)
				r.Post("/retreat", h.retreat)
				r.Post("/step", h.goToStep)
				r.Post("/reset", h.reset)
				r.Get("/quote", h.quote)
				r.Post("/coupon", h.verifyCoupon)
				r.Delete("/coupon", h.removeCoupon)
				r.Post("/checkout", h.startCheckout)
			})
		})

		r.Route("/checkouts/{checkoutID}", func(r chi.Router) {
			r.Get("/", h.getCheckout)
			r.Post("/confirm", h.confirmPayment)
			r.Delete("/", h.abandonCheckout)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", h.listCampaigns)
			r.Get("/{campaignID}", h.getCampaign)
		})
	})

	return otelhttp.NewHandler(r, "campaign.rest")
}
