package resiliency

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker open")

// EnhancedClient wraps http.Client with resilience patterns:
// - Rate limiting
// - Circuit Breaking
// - Distributed Tracing Injection
//
// Each request is sent at most once. Callers that want a resend build a
// new request.
type EnhancedClient struct {
	client     *http.Client
	limiter    *rate.Limiter
	breaker    *CircuitBreaker
	propagator propagation.TextMapPropagator
}

// Option configures an EnhancedClient.
type Option func(*EnhancedClient)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *EnhancedClient) { c.client = hc }
}

// WithRateLimit caps outbound requests per second. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *EnhancedClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreaker replaces the circuit breaker.
func WithBreaker(cb *CircuitBreaker) Option {
	return func(c *EnhancedClient) { c.breaker = cb }
}

func NewEnhancedClient(opts ...Option) *EnhancedClient {
	c := &EnhancedClient{
		client:     &http.Client{Timeout: 30 * time.Second},
		breaker:    NewCircuitBreaker("default", 5, 10*time.Second),
		propagator: propagation.TraceContext{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Breaker exposes the client's circuit breaker.
func (c *EnhancedClient) Breaker() *CircuitBreaker {
	return c.breaker
}

// Do executes an HTTP request with resiliency patterns.
func (c *EnhancedClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// 1. Trace Injection (W3C Trace Context) from the active span.
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	// 2. Circuit Breaker Check
	if !c.breaker.Allow() {
		return nil, fmt.Errorf("%w: %s", ErrCircuitOpen, c.breaker.name)
	}

	// 3. Rate Limit
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	// 4. Single attempt; 5xx and transport errors count against the breaker.
	resp, err := c.client.Do(req)
	if err == nil && resp.StatusCode < 500 {
		c.breaker.Success()
		return resp, nil
	}
	c.breaker.Failure()
	return resp, err
}

// BreakerState is the circuit breaker's position.
type BreakerState string

const (
	StateClosed   BreakerState = "CLOSED"
	StateOpen     BreakerState = "OPEN"
	StateHalfOpen BreakerState = "HALF_OPEN"
)

// CircuitBreaker implements a simple state machine for failure detection.
type CircuitBreaker struct {
	mu           sync.Mutex
	name         string
	failureCount int
	threshold    int
	lastFailure  time.Time
	resetTimeout time.Duration
	state        BreakerState
	now          func() time.Time
}

func NewCircuitBreaker(name string, threshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		threshold:    threshold,
		resetTimeout: timeout,
		state:        StateClosed,
		now:          time.Now,
	}
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen {
		if cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
			cb.state = StateHalfOpen
			return true
		}
		return false
	}
	return true
}

func (cb *CircuitBreaker) Success() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureCount = 0
}

func (cb *CircuitBreaker) Failure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailure = cb.now()
	if cb.state == StateHalfOpen || cb.failureCount >= cb.threshold {
		cb.state = StateOpen
	}
}
