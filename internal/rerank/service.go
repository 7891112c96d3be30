package rerank

import (
	"context"

	"github.com/delfianto/tei-reranker-proxy/internal/metrics"
	"github.com/delfianto/tei-reranker-proxy/internal/model"
)

// Upstream is the call the service makes once a request is valid.
// *Invoker implements it.
type Upstream interface {
	Invoke(ctx context.Context, upstream model.UpstreamRerankRequest, topN *int) (model.RerankResponse, error)
}

// Service runs the full pipeline for one request: validate and translate,
// then invoke. Validation failures return before any upstream call.
type Service struct {
	upstream     Upstream
	maxBatchSize int
	metrics      *metrics.Metrics
}

// NewService creates a Service. m may be nil.
func NewService(upstream Upstream, maxBatchSize int, m *metrics.Metrics) *Service {
	return &Service{upstream: upstream, maxBatchSize: maxBatchSize, metrics: m}
}

// Rerank validates req and, if valid, forwards it upstream.
func (s *Service) Rerank(ctx context.Context, req model.RerankRequest) (model.RerankResponse, error) {
	upstream, err := ValidateAndTranslate(req, s.maxBatchSize)
	if err != nil {
		return model.RerankResponse{}, err
	}
	s.metrics.ObserveBatchSize(len(upstream.Texts))
	return s.upstream.Invoke(ctx, upstream, req.TopN)
}
