package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds the HTTP router with global middleware, rate limits,
// and the static reports file server.
func NewRouter(h *Handler, reportsDir string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	// Starting a quiz and answering both hit the LLM, so they carry
	// per-IP budgets.
	r.With(httprate.LimitByIP(3, time.Minute)).Post("/start", h.handleStart)
	r.With(httprate.LimitByIP(10, time.Minute)).Post("/answer", h.handleAnswer)

	r.Post("/report", h.handleReport)
	r.Post("/generate-subtopics", h.handleSubtopics)
	r.Post("/session/recover", h.handleRecover)
	r.Post("/session/heartbeat", h.handleHeartbeat)

	r.Handle("/static/reports/*", http.StripPrefix("/static/reports/",
		http.FileServer(http.Dir(reportsDir))))

	return r
}
