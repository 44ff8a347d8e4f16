package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"spamlens/config"
	"spamlens/internal/logger"
	"spamlens/internal/usecase"
)

// Server is the HTTP API server for spamlens.
type Server struct {
	router chi.Router
	app    *usecase.App
	log    logger.Logger
	cfg    config.ServerConfig
}

// NewServer creates and configures the HTTP server.
func NewServer(app *usecase.App, log logger.Logger, cfg config.ServerConfig) *Server {
	s := &Server{
		app: app,
		log: log,
		cfg: cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout.Std()))
		}
		r.Get("/model", s.handleModel)
		r.Post("/classify", s.handleClassify)
		r.Post("/explain", s.handleExplain)
		r.Post("/analyze", s.handleAnalyze)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
