package app

import (
	"redirector/internal/config"
	"redirector/internal/handlers"
	"redirector/internal/ratelimit"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// InitMiddleware - initializes middleware handlers for the router.
func InitMiddleware(r *chi.Mux, conf *config.Config, ctrl *handlers.Controller) {
	r.Use(ctrl.PanicRecoveryMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(conf.RequestTimeout()))
	r.Use(ctrl.LoggingMiddleware)
	r.Mount("/debug", middleware.Profiler())
}

// Routing - registers routes for the redirect controller.
// Registered routes:
//   - POST "/api/line-redirects/create-token": issues a handoff token using ctrl.CreateToken().
//   - POST "/api/line-redirects/verify-token": redeems a token for a destination using ctrl.VerifyToken().
//   - GET "/api/line-redirects/select": selects a destination without a token using ctrl.Select().
//   - GET "/ping": storage availability check through ctrl.PingHandler().
//   - GET "/debug/admission": in-memory admission counters through ctrl.AdmissionStats().
//
// Every "/api/line-redirects" response is marked non-cacheable.
func Routing(r *chi.Mux, ctrl *handlers.Controller, stats *ratelimit.MemoryStatsStore) {
	r.Route("/api/line-redirects", func(r chi.Router) {
		r.Use(handlers.NoStoreMiddleware)
		r.Post("/create-token", ctrl.CreateToken())
		r.Post("/verify-token", ctrl.VerifyToken())
		r.Get("/select", ctrl.Select())
	})
	r.Get("/ping", ctrl.PingHandler())
	r.Get("/debug/admission", ctrl.AdmissionStats(stats))
}
