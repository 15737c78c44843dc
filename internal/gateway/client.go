// Package gateway holds the outbound REST clients. Every client shares one
// JSON transport that applies an explicit retry policy, treats 404 as "no
// data", and trips a circuit breaker after repeated exhausted retries.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"keyworker/internal/platform/metrics"
	"keyworker/pkg/platform/circuit"
	"keyworker/pkg/platform/retry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "keyworker/gateway"

// Error is a failed outbound call. Status is zero for transport failures.
type Error struct {
	Gateway string
	Method  string
	Path    string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s %s: status %d", e.Gateway, e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Gateway, e.Method, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the failure is transient: a transport error or
// a 5xx response.
func (e *Error) Retryable() bool {
	return e.Status == 0 || e.Status >= http.StatusInternalServerError
}

// IsRetryable is the retry predicate for gateway calls. Context
// cancellation is never retried.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Retryable()
	}
	return false
}

// Client is a JSON-over-HTTP client bound to one base URL.
type Client struct {
	name    string
	baseURL string
	http    *http.Client
	retry   retry.Policy
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithRetry replaces the retry policy. The predicate is forced to
// IsRetryable when unset.
func WithRetry(p retry.Policy) Option {
	return func(cl *Client) { cl.retry = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) { cl.logger = logger }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) { cl.breaker = b }
}

// NewClient builds a client. Defaults: 10s timeout, three attempts with a
// fixed backoff, a breaker opening after five exhausted calls.
func NewClient(name, baseURL string, opts ...Option) *Client {
	c := &Client{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		retry:   retry.Default(),
		breaker: circuit.New(name),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.Retryable == nil {
		c.retry.Retryable = IsRetryable
	}
	return c
}

// Get decodes the response into out. found is false on 404.
func (c *Client) Get(ctx context.Context, path string, out any) (found bool, err error) {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the response into out. found is false
// on 404.
func (c *Client) Post(ctx context.Context, path string, body, out any) (found bool, err error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("%s: marshal request: %w", c.name, err)
	}
	return c.do(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any) (bool, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, c.name+" "+method)
	defer span.End()
	span.SetAttributes(
		attribute.String("gateway", c.name),
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	policy := c.retry
	if c.breaker.IsOpen() {
		// While open, a call gets one attempt so a failing dependency
		// is not hammered with retries.
		policy = policy.WithMaxAttempts(1)
	}

	start := time.Now()
	found := true
	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		var err error
		found, err = c.once(ctx, method, path, payload, out)
		if err != nil && attempt < policy.MaxAttempts && IsRetryable(err) {
			c.logger.WarnContext(ctx, "gateway call failed, retrying",
				"gateway", c.name,
				"path", path,
				"attempt", attempt,
				"error", err,
			)
		}
		return err
	})
	c.metrics.ObserveGatewayLatency(c.name, time.Since(start))

	if err != nil {
		c.metrics.IncrementGatewayRequest(c.name, "error")
		if IsRetryable(err) {
			if _, change := c.breaker.RecordFailure(); change.Opened {
				c.logger.ErrorContext(ctx, "gateway circuit opened", "gateway", c.name)
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "gateway circuit closed", "gateway", c.name)
	}
	if found {
		c.metrics.IncrementGatewayRequest(c.name, "ok")
	} else {
		c.metrics.IncrementGatewayRequest(c.name, "not_found")
	}
	return found, nil
}

func (c *Client) once(ctx context.Context, method, path string, payload []byte, out any) (bool, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("%s: build request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, &Error{Gateway: c.name, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	case resp.StatusCode >= http.StatusBadRequest:
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, &Error{Gateway: c.name, Method: method, Path: path, Status: resp.StatusCode}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%s: decode %s: %w", c.name, path, err)
	}
	return true, nil
}
