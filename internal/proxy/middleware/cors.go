package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/delfianto/tei-reranker-proxy/internal/config"
	"github.com/delfianto/tei-reranker-proxy/internal/requestid"
)

// NewCORSMiddleware adds cross-origin headers so browser clients can call
// the proxy directly. Preflight requests are answered here.
func NewCORSMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: cfg.AllowedMethods,
		AllowedHeaders: cfg.AllowedHeaders,
		ExposedHeaders: []string{requestid.Header},
	})
	return c.Handler
}
