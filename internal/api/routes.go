package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// SetupRoutes configures the router: CORS on everything under /api for the
// public signup front-end, and per-IP rate limiting on the signup endpoint.
func SetupRoutes(h *Handlers, hc *HealthChecker, signupRatePerMinute int) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// Health check (outside /api, no CORS needed)
	r.Get("/health", hc.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		// CORS - the form is embedded on estate/ISP marketing sites, so any
		// origin may call, with credentials
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		r.Get("/sites", h.GetSites)
		r.Get("/units", h.GetUnits)
		r.With(httprate.LimitByRealIP(signupRatePerMinute, time.Minute)).
			Post("/signup", h.Signup)
	})

	return r
}
