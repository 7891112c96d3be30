package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/delfianto/tei-reranker-proxy/internal/config"
	"github.com/delfianto/tei-reranker-proxy/internal/metrics"
	"github.com/delfianto/tei-reranker-proxy/internal/model"
	"github.com/delfianto/tei-reranker-proxy/internal/requestid"
)

var errTrailingData = errors.New("unexpected data after the JSON body")

// Reranker runs the validate, translate and invoke pipeline.
// *rerank.Service implements it.
type Reranker interface {
	Rerank(ctx context.Context, req model.RerankRequest) (model.RerankResponse, error)
}

// Handlers holds all HTTP handler dependencies.
type Handlers struct {
	Config   *config.Config
	Reranker Reranker
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

// NotFound writes the not_found envelope for unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, model.ErrorEnvelope{
		Error:   model.KindNotFound,
		Message: "no route for " + r.URL.Path,
	})
}

// MethodNotAllowed writes the method_not_allowed envelope.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, model.ErrorEnvelope{
		Error:   model.KindMethodNotAllowed,
		Message: "method " + r.Method + " not allowed on " + r.URL.Path,
	})
}

// writeError logs err, counts it and writes its envelope.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	re := model.AsRerankError(err)
	status := re.Kind.HTTPStatus()

	fields := []zap.Field{
		zap.String("request_id", requestid.FromContext(r.Context())),
		zap.String("kind", string(re.Kind)),
		zap.Int("status", status),
		zap.String("message", re.Message),
	}
	if re.Kind.IsUpstream() {
		fields = append(fields, zap.Bool("upstream", true))
		if re.UpstreamStatus != 0 {
			fields = append(fields, zap.Int("upstream_status", re.UpstreamStatus))
		}
	}
	if re.Err != nil {
		fields = append(fields, zap.NamedError("cause", re.Err))
	}
	if status >= http.StatusInternalServerError {
		h.Logger.Error("rerank failed", fields...)
	} else {
		h.Logger.Warn("rerank rejected", fields...)
	}

	h.Metrics.ObserveRequest(string(re.Kind))
	writeJSON(w, status, re.Envelope())
}

// decodeJSON decodes the request body as a single JSON value into v.
// Anything after that value is an error.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errTrailingData
		}
		return err
	}
	return nil
}
