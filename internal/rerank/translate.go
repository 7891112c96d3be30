// Package rerank validates client rerank requests, translates them to the
// TEI wire shape and maps TEI responses back to the client shape.
package rerank

import (
	"strings"

	"github.com/delfianto/tei-reranker-proxy/internal/model"
)

// ValidateAndTranslate checks req against the structural and size rules and
// projects it onto the upstream request. Rules are applied in order and the
// first failure is returned as a *model.RerankError.
//
// The projection is pure: the query and documents are forwarded exactly as
// received, and model and top_n are not forwarded.
func ValidateAndTranslate(req model.RerankRequest, maxBatchSize int) (model.UpstreamRerankRequest, error) {
	if strings.TrimSpace(req.Query) == "" {
		return model.UpstreamRerankRequest{}, model.NewError(model.KindEmptyQuery, "query cannot be empty")
	}
	if len(req.Documents) == 0 {
		return model.UpstreamRerankRequest{}, model.NewError(model.KindEmptyDocuments, "documents list cannot be empty")
	}
	if len(req.Documents) > maxBatchSize {
		return model.UpstreamRerankRequest{}, model.NewError(model.KindBatchTooLarge,
			"too many documents: got %d, max %d", len(req.Documents), maxBatchSize)
	}
	if req.TopN != nil && *req.TopN <= 0 {
		return model.UpstreamRerankRequest{}, model.NewError(model.KindInvalidTopN,
			"top_n must be a positive integer, got %d", *req.TopN)
	}

	return model.UpstreamRerankRequest{
		Query: req.Query,
		Texts: req.Documents,
	}, nil
}
