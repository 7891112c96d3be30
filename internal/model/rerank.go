package model

import "encoding/json"

// RerankRequest is the client-facing rerank request (Cohere / OpenWebUI dialect).
type RerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	Model     string   `json:"model,omitempty"`
	TopN      *int     `json:"top_n,omitempty"`
}

// UpstreamRerankRequest is the body sent to TEI's /rerank endpoint.
// Truncate and RawScores are TEI options and stay off the wire unless set.
type UpstreamRerankRequest struct {
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	Truncate  bool     `json:"truncate,omitempty"`
	RawScores bool     `json:"raw_scores,omitempty"`
}

// UpstreamRerankResult is one scored entry returned by the upstream.
type UpstreamRerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// UnmarshalJSON accepts both "relevance_score" and TEI's native "score".
func (r *UpstreamRerankResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Index          *int     `json:"index"`
		RelevanceScore *float64 `json:"relevance_score"`
		Score          *float64 `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Index == nil {
		return errMissingField("index")
	}
	switch {
	case raw.RelevanceScore != nil:
		r.RelevanceScore = *raw.RelevanceScore
	case raw.Score != nil:
		r.RelevanceScore = *raw.Score
	default:
		return errMissingField("relevance_score")
	}
	r.Index = *raw.Index
	return nil
}

// RerankResponse is the client-facing rerank response.
type RerankResponse struct {
	Results []RerankResult `json:"results"`
}

// RerankResult represents a single rerank result.
type RerankResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

type errMissingField string

func (e errMissingField) Error() string {
	return "missing field " + string(e)
}
