package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/delfianto/tei-reranker-proxy/internal/config"
	"github.com/delfianto/tei-reranker-proxy/internal/metrics"
	"github.com/delfianto/tei-reranker-proxy/internal/model"
	"github.com/delfianto/tei-reranker-proxy/internal/requestid"
)

const tracerName = "github.com/delfianto/tei-reranker-proxy/internal/rerank"

// maxDetailRunes bounds the upstream error excerpt surfaced to clients.
const maxDetailRunes = 200

// Invoker calls the upstream TEI /rerank endpoint and maps its response.
// It is safe for concurrent use; all fields are read-only after NewInvoker.
type Invoker struct {
	client           *http.Client
	url              string
	timeout          time.Duration
	maxResponseBytes int64
	truncate         bool
	rawScores        bool

	logger  *zap.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewHTTPClient builds the shared outbound client. The per-call deadline is
// applied through the request context, not http.Client.Timeout, so that the
// inbound request's cancellation also reaches the upstream call.
func NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   64,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{Transport: transport}
}

// NewInvoker creates an invoker for cfg. A nil client gets NewHTTPClient();
// m may be nil.
func NewInvoker(cfg *config.Config, client *http.Client, logger *zap.Logger, m *metrics.Metrics) *Invoker {
	if client == nil {
		client = NewHTTPClient()
	}
	return &Invoker{
		client:           client,
		url:              cfg.RerankURL(),
		timeout:          cfg.UpstreamTimeout,
		maxResponseBytes: cfg.MaxResponseBytes,
		truncate:         cfg.Truncate,
		rawScores:        cfg.RawScores,
		logger:           logger,
		metrics:          m,
		tracer:           otel.Tracer(tracerName),
	}
}

// Invoke sends upstream to TEI and returns the client response. If topN is
// non-nil the validated result list is cut to its first *topN entries.
// Every error is a *model.RerankError.
func (i *Invoker) Invoke(ctx context.Context, upstream model.UpstreamRerankRequest, topN *int) (model.RerankResponse, error) {
	ctx, span := i.tracer.Start(ctx, "tei.rerank",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.url", i.url),
			attribute.Int("rerank.documents", len(upstream.Texts)),
		))
	defer span.End()

	start := time.Now()
	resp, err := i.invoke(ctx, upstream, topN)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		re := model.AsRerankError(err)
		outcome = string(re.Kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(re.Kind))
		if re.UpstreamStatus != 0 {
			span.SetAttributes(attribute.Int("http.status_code", re.UpstreamStatus))
		}
	} else {
		span.SetAttributes(attribute.Int("rerank.results", len(resp.Results)))
	}
	i.metrics.ObserveUpstream(outcome, elapsed)
	i.logger.Debug("upstream rerank call",
		zap.String("request_id", requestid.FromContext(ctx)),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed))

	return resp, err
}

func (i *Invoker) invoke(ctx context.Context, upstream model.UpstreamRerankRequest, topN *int) (model.RerankResponse, error) {
	upstream.Truncate = i.truncate
	upstream.RawScores = i.rawScores

	body, err := json.Marshal(upstream)
	if err != nil {
		return model.RerankResponse{}, model.WrapError(model.KindInternal, err, "encode upstream request")
	}

	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, i.url, bytes.NewReader(body))
	if err != nil {
		return model.RerankResponse{}, model.WrapError(model.KindInternal, err, "create upstream request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return model.RerankResponse{}, i.transportError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, i.maxResponseBytes+1))
	if err != nil {
		return model.RerankResponse{}, i.transportError(ctx, err)
	}
	if int64(len(data)) > i.maxResponseBytes {
		return model.RerankResponse{}, model.NewError(model.KindUpstreamMalformed,
			"upstream response exceeds %d bytes", i.maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := model.NewError(model.KindUpstreamRejected, "upstream rejected the request with status %d", resp.StatusCode)
		if detail := upstreamErrorDetail(data); detail != "" {
			re.Message += ": " + detail
		}
		re.UpstreamStatus = resp.StatusCode
		return model.RerankResponse{}, re
	}

	results, err := decodeResults(data)
	if err != nil {
		return model.RerankResponse{}, model.WrapError(model.KindUpstreamMalformed, err,
			"upstream returned an invalid rerank response")
	}
	if err := checkResults(results, len(upstream.Texts)); err != nil {
		return model.RerankResponse{}, err
	}

	if topN != nil && *topN < len(results) {
		results = results[:*topN]
	}

	out := model.RerankResponse{Results: make([]model.RerankResult, len(results))}
	for n, r := range results {
		out.Results[n] = model.RerankResult{Index: r.Index, RelevanceScore: r.RelevanceScore}
	}
	return out, nil
}

// transportError classifies a failed round trip. parent is the inbound
// request context, so a cancelled parent means the client went away.
func (i *Invoker) transportError(parent context.Context, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return model.WrapError(model.KindUpstreamDown, err, "request cancelled before the upstream responded")
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return model.WrapError(model.KindUpstreamTimeout, err,
			"upstream did not respond within %s", i.timeout)
	}
	return model.WrapError(model.KindUpstreamDown, err, "failed to reach the upstream rerank service")
}

// decodeResults accepts {"results": [...]} and TEI's bare array form.
func decodeResults(data []byte) ([]model.UpstreamRerankResult, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("body is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	var raw string
	switch {
	case root.IsArray():
		raw = root.Raw
	case root.IsObject():
		res := root.Get("results")
		if !res.IsArray() {
			return nil, errors.New(`missing "results" array`)
		}
		raw = res.Raw
	default:
		return nil, fmt.Errorf("unexpected JSON %s", root.Type)
	}

	var results []model.UpstreamRerankResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, err
	}
	return results, nil
}

// checkResults enforces that the indices form a permutation of 0..count-1.
func checkResults(results []model.UpstreamRerankResult, count int) error {
	seen := make([]bool, count)
	for _, r := range results {
		if r.Index < 0 || r.Index >= count {
			return model.NewError(model.KindUpstreamMalformed,
				"upstream returned index %d for %d documents", r.Index, count)
		}
		if seen[r.Index] {
			return model.NewError(model.KindUpstreamMalformed,
				"upstream returned duplicate index %d", r.Index)
		}
		seen[r.Index] = true
	}
	if len(results) != count {
		return model.NewError(model.KindUpstreamMalformed,
			"upstream returned %d results for %d documents", len(results), count)
	}
	return nil
}

// upstreamErrorDetail extracts the upstream's own error message from a JSON
// error body, sanitized for inclusion in a client-facing message.
func upstreamErrorDetail(data []byte) string {
	if !gjson.ValidBytes(data) {
		return ""
	}
	for _, path := range []string{"error.message", "error", "message", "detail"} {
		r := gjson.GetBytes(data, path)
		if r.Type == gjson.String && r.Str != "" {
			return sanitize(r.Str)
		}
	}
	return ""
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) > maxDetailRunes {
		s = string([]rune(s)[:maxDetailRunes]) + "..."
	}
	return s
}
