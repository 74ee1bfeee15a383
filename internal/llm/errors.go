package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// UpstreamKind classifies why a provider call failed.
type UpstreamKind string

const (
	KindAuth          UpstreamKind = "auth"
	KindRateLimit     UpstreamKind = "rate_limit"
	KindNetwork       UpstreamKind = "network"
	KindServer        UpstreamKind = "server"
	KindBadRequest    UpstreamKind = "bad_request"
	KindEmptyResponse UpstreamKind = "empty_response"
	KindCanceled      UpstreamKind = "canceled"
)

// UpstreamError reports a failed completion call.
type UpstreamError struct {
	Kind       UpstreamKind
	StatusCode int           // HTTP status when the API answered, else 0
	RetryAfter time.Duration // from the Retry-After header, when the API sent one
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s (HTTP %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("upstream %s: %v", e.Kind, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsKind reports whether err is an UpstreamError of the given kind.
func IsKind(err error, kind UpstreamKind) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == kind
}

// errEmptyResponse is wrapped when the API answers without text.
var errEmptyResponse = errors.New("no content in response")

// classifyStatus maps an HTTP status from a provider SDK error to an
// UpstreamError. A zero status means the request never got an answer.
func classifyStatus(status int, err error) *UpstreamError {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Kind: KindCanceled, StatusCode: status, Err: err}
	}

	kind := KindNetwork
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusTooManyRequests:
		kind = KindRateLimit
	case status >= 500:
		kind = KindServer
	case status >= 400:
		kind = KindBadRequest
	}
	return &UpstreamError{Kind: kind, StatusCode: status, Err: err}
}

// retryAfter reads the server's backoff hint. retry-after-ms takes
// precedence, then Retry-After as seconds or as an HTTP date.
func retryAfter(h http.Header, now time.Time) time.Duration {
	if h == nil {
		return 0
	}
	if ms, err := strconv.ParseFloat(h.Get("Retry-After-Ms"), 64); err == nil && ms > 0 {
		return time.Duration(ms * float64(time.Millisecond))
	}
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if at, err := http.ParseTime(v); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}

func emptyResponse(provider string) *UpstreamError {
	return &UpstreamError{
		Kind: KindEmptyResponse,
		Err:  fmt.Errorf("%s: %w", provider, errEmptyResponse),
	}
}
