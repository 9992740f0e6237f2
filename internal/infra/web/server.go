// File: internal/infra/web/server.go
package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/razavioo/notimetolie.com/internal/infra/ws"
	"github.com/razavioo/notimetolie.com/internal/usecase"
)

// Server exposes the AI orchestration HTTP surface.
type Server struct {
	jobUC        *usecase.JobUseCase
	configUC     *usecase.ConfigUseCase
	suggestionUC *usecase.SuggestionUseCase
	wsHandler    *ws.Handler
	auth         *Auth
	log          *zerolog.Logger
}

func NewServer(
	jobUC *usecase.JobUseCase,
	configUC *usecase.ConfigUseCase,
	suggestionUC *usecase.SuggestionUseCase,
	wsHandler *ws.Handler,
	auth *Auth,
	log *zerolog.Logger,
) *Server {
	return &Server{
		jobUC:        jobUC,
		configUC:     configUC,
		suggestionUC: suggestionUC,
		wsHandler:    wsHandler,
		auth:         auth,
		log:          log,
	}
}

// Router builds the full route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// websocket auth rides in the query string, not the Authorization header
	r.Get("/ws", s.wsHandler.ServeHTTP)
	r.Get("/ws/stats", s.wsHandler.StatsHandler)

	r.Route("/api/v1/ai", func(r chi.Router) {
		r.Use(s.auth.Middleware)

		r.Route("/configurations", func(r chi.Router) {
			r.Post("/", s.createConfig)
			r.Get("/", s.listConfigs)
			r.Get("/{id}", s.getConfig)
			r.Put("/{id}", s.updateConfig)
			r.Delete("/{id}", s.deleteConfig)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", s.submitJob)
			r.Get("/", s.listJobs)
			r.Get("/{id}", s.getJob)
			r.Post("/{id}/cancel", s.cancelJob)
		})

		r.Route("/suggestions", func(r chi.Router) {
			r.Get("/", s.listSuggestions)
			r.Get("/{id}", s.getSuggestion)
			r.Post("/{id}/approve", s.approveSuggestion)
			r.Post("/{id}/reject", s.rejectSuggestion)
		})
	})

	return r
}
