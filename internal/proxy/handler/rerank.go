package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/delfianto/tei-reranker-proxy/internal/metrics"
	"github.com/delfianto/tei-reranker-proxy/internal/model"
	"github.com/delfianto/tei-reranker-proxy/internal/requestid"
)

// Rerank handles POST /rerank and POST /v1/rerank.
func (h *Handlers) Rerank(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxRequestBytes)

	var req model.RerankRequest
	if err := decodeJSON(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, model.WrapError(model.KindRequestTooLarge, err,
				"request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.writeError(w, r, model.WrapError(model.KindInvalidJSON, err, "invalid JSON in request body"))
		return
	}

	reqID := requestid.FromContext(r.Context())
	topN := 0
	if req.TopN != nil {
		topN = *req.TopN
	}
	h.Logger.Info("rerank request",
		zap.String("request_id", reqID),
		zap.Int("query_len", len(req.Query)),
		zap.Int("documents", len(req.Documents)),
		zap.Int("top_n", topN),
		zap.String("model", req.Model))
	h.Logger.Debug("rerank request payload",
		zap.String("request_id", reqID),
		zap.String("query", req.Query),
		zap.Strings("documents", req.Documents))

	resp, err := h.Reranker.Rerank(r.Context(), req)
	if err != nil {
		if r.Context().Err() != nil {
			h.Logger.Info("client went away before the rerank finished",
				zap.String("request_id", reqID), zap.Error(err))
			h.Metrics.ObserveRequest("client_cancelled")
			return
		}
		h.writeError(w, r, err)
		return
	}

	h.Logger.Info("rerank succeeded",
		zap.String("request_id", reqID),
		zap.Int("results", len(resp.Results)))
	h.Metrics.ObserveRequest(metrics.OutcomeSuccess)
	writeJSON(w, http.StatusOK, resp)
}
