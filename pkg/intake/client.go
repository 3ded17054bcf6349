// Package intake sends signed lead submissions to the lead intake API.
package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/canonicalize"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/crypto"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/lead"
	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/util/resiliency"
)

// LeadsPath is appended to the base URL for submissions.
const LeadsPath = "/leads"

// maxErrorBody bounds how much of a rejection body is kept.
const maxErrorBody = 4 << 10

// ErrContract wraps submissions that fail the outbound schema check.
var ErrContract = errors.New("submission violates intake contract")

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("intake api %d", e.Status)
	}
	return fmt.Sprintf("intake api %d: %s", e.Status, e.Body)
}

// Client is a lead intake API client. It does not retry submissions.
type Client struct {
	baseURL    string
	signer     *crypto.HMACSigner
	httpClient *http.Client
	timeout    time.Duration
	rps        float64
	breaker    *resiliency.CircuitBreaker
	logger     *slog.Logger
	tracer     trace.Tracer
	newID      func() string

	http *resiliency.EnhancedClient
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for transport. The client is
// copied; the caller's value is never modified.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP timeout, whatever the order of options.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRateLimit caps submissions per second; zero disables the limiter.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.rps = rps }
}

// WithTracer sets the tracer used for submission spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithBreaker sets the circuit breaker guarding the API.
func WithBreaker(cb *resiliency.CircuitBreaker) Option {
	return func(c *Client) { c.breaker = cb }
}

// New creates a client posting to baseURL and signing with signer.
func New(baseURL string, signer *crypto.HMACSigner, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: resiliency.NewCircuitBreaker("intake", 5, 30*time.Second),
		logger:  slog.Default().With("component", "intake"),
		tracer:  otel.Tracer("mahfal/intake"),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	hc := *c.httpClient
	if c.timeout > 0 {
		hc.Timeout = c.timeout
	}
	c.httpClient = &hc
	c.http = resiliency.NewEnhancedClient(
		resiliency.WithHTTPClient(c.httpClient),
		resiliency.WithRateLimit(c.rps, 1),
		resiliency.WithBreaker(c.breaker),
	)
	return c
}

// BaseURL returns the API root the client posts to.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the effective HTTP timeout.
func (c *Client) Timeout() time.Duration { return c.httpClient.Timeout }

// SubmitLead signs sub and posts it once. Any 2xx response is success.
func (c *Client) SubmitLead(ctx context.Context, sub lead.Submission) (err error) {
	requestID := c.newID()
	ctx, span := c.tracer.Start(ctx, "intake.SubmitLead",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("mahfal.request_id", requestID)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := sub.CheckContract(); err != nil {
		return fmt.Errorf("%w: %v", ErrContract, err)
	}

	body, headers, err := c.signer.Seal(sub)
	if err != nil {
		return fmt.Errorf("intake: %w", err)
	}
	digest := canonicalize.HashBytes(body)
	span.SetAttributes(attribute.String("mahfal.body_sha256", digest))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+LeadsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("intake: build request: %w", err)
	}
	headers.Apply(req.Header)
	req.Header.Set(crypto.HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "lead submission transport failure", "request_id", requestID, "body_sha256", digest, "error", err)
		return fmt.Errorf("intake: send: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.WarnContext(ctx, "lead submission rejected",
			"request_id", requestID,
			"body_sha256", digest,
			"status", resp.StatusCode,
			"duration", time.Since(start),
		)
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	c.logger.InfoContext(ctx, "lead submitted",
		"request_id", requestID,
		"body_sha256", digest,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return nil
}
