package handler

import (
	"encoding/json"
	"net/http"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "rerank-proxy"

// HealthCheck handles GET /health. It never consults the upstream.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
