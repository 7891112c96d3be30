package proxy

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/delfianto/tei-reranker-proxy/internal/config"
	"github.com/delfianto/tei-reranker-proxy/internal/proxy/handler"
	"github.com/delfianto/tei-reranker-proxy/internal/proxy/middleware"
	"github.com/delfianto/tei-reranker-proxy/internal/requestid"
)

// Server holds dependencies for the HTTP proxy server.
type Server struct {
	Router   chi.Router
	Handlers *handler.Handlers
}

// ServerConfig holds configuration for creating a new Server.
type ServerConfig struct {
	Handlers *handler.Handlers
	CORS     config.CORSConfig
	Logger   *zap.Logger
}

// NewServer creates a chi router with all routes configured.
func NewServer(cfg ServerConfig) *Server {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.NewAccessLogMiddleware(cfg.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.NewCORSMiddleware(cfg.CORS))

	s := &Server{
		Router:   r,
		Handlers: cfg.Handlers,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.Router

	r.NotFound(s.Handlers.NotFound)
	r.MethodNotAllowed(s.Handlers.MethodNotAllowed)

	// Health (no upstream dependency)
	r.Get("/health", s.Handlers.HealthCheck)

	// Rerank API: bare path for OpenWebUI, /v1 for Cohere-style clients.
	r.Post("/rerank", s.Handlers.Rerank)
	r.Post("/v1/rerank", s.Handlers.Rerank)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
