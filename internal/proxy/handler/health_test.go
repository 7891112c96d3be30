package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/delfianto/tei-reranker-proxy/internal/config"
	"github.com/delfianto/tei-reranker-proxy/internal/model"
)

func newTestHandlers(rr Reranker) *Handlers {
	return &Handlers{
		Config:   config.Default(),
		Reranker: rr,
		Logger:   zap.NewNop(),
	}
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandlers(nil)
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)
	h.HealthCheck(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]string{"status": "healthy", "service": "rerank-proxy"}, resp)
}

func TestNotFound(t *testing.T) {
	h := newTestHandlers(nil)
	w := httptest.NewRecorder()
	h.NotFound(w, httptest.NewRequest("GET", "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var env model.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, model.KindNotFound, env.Error)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandlers(nil)
	w := httptest.NewRecorder()
	h.MethodNotAllowed(w, httptest.NewRequest("DELETE", "/rerank", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	var env model.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, model.KindMethodNotAllowed, env.Error)
	assert.Contains(t, env.Message, "DELETE")
}
