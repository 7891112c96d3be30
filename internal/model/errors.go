package model

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind identifies a failure class in the error envelope.
type ErrorKind string

// Client-input, routing, upstream and server failure kinds.
const (
	KindEmptyQuery        ErrorKind = "empty_query"
	KindEmptyDocuments    ErrorKind = "empty_documents"
	KindBatchTooLarge     ErrorKind = "batch_too_large"
	KindInvalidTopN       ErrorKind = "invalid_top_n"
	KindInvalidJSON       ErrorKind = "invalid_json"
	KindRequestTooLarge   ErrorKind = "request_too_large"
	KindNotFound          ErrorKind = "not_found"
	KindMethodNotAllowed  ErrorKind = "method_not_allowed"
	KindUpstreamTimeout   ErrorKind = "upstream_timeout"
	KindUpstreamRejected  ErrorKind = "upstream_rejected"
	KindUpstreamMalformed ErrorKind = "upstream_malformed_response"
	KindUpstreamDown      ErrorKind = "upstream_unavailable"
	KindInternal          ErrorKind = "internal_error"
)

// HTTPStatus maps the kind to the status code written to the client.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindEmptyQuery, KindEmptyDocuments, KindInvalidTopN, KindInvalidJSON:
		return http.StatusBadRequest
	case KindBatchTooLarge, KindRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindUpstreamTimeout:
		return http.StatusGatewayTimeout
	case KindUpstreamRejected, KindUpstreamMalformed, KindUpstreamDown:
		return http.StatusBadGateway
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsUpstream reports whether the failure originated at the upstream service.
func (k ErrorKind) IsUpstream() bool {
	switch k {
	case KindUpstreamTimeout, KindUpstreamRejected, KindUpstreamMalformed, KindUpstreamDown:
		return true
	}
	return false
}

// RerankError is the unified error type returned by validation and by the
// upstream invoker.
type RerankError struct {
	Kind    ErrorKind
	Message string

	// UpstreamStatus is the upstream HTTP status for KindUpstreamRejected.
	UpstreamStatus int
	Err            error
}

func (e *RerankError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RerankError) Unwrap() error {
	return e.Err
}

// Envelope converts the error to its client-facing JSON body.
func (e *RerankError) Envelope() ErrorEnvelope {
	return ErrorEnvelope{Error: e.Kind, Message: e.Message}
}

// NewError creates a RerankError with a formatted message.
func NewError(kind ErrorKind, format string, args ...any) *RerankError {
	return &RerankError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError creates a RerankError that keeps err as its cause. The cause is
// logged but never written to the client.
func WrapError(kind ErrorKind, err error, format string, args ...any) *RerankError {
	return &RerankError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// AsRerankError extracts a RerankError from err, wrapping anything else as
// an internal error.
func AsRerankError(err error) *RerankError {
	var re *RerankError
	if errors.As(err, &re) {
		return re
	}
	return WrapError(KindInternal, err, "internal server error")
}

// ErrorEnvelope is the JSON error body returned by the proxy.
type ErrorEnvelope struct {
	Error   ErrorKind `json:"error"`
	Message string    `json:"message"`
}
