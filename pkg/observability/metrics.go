package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PushJob is the Pushgateway job name.
const PushJob = "mahfal_concierge"

// Metrics records wizard activity to a private Prometheus registry and to
// an OpenTelemetry meter.
type Metrics struct {
	registry *prometheus.Registry

	submissions *prometheus.CounterVec
	duration    prometheus.Histogram
	transitions *prometheus.CounterVec

	otelSubmissions metric.Int64Counter
	otelDuration    metric.Float64Histogram
}

// NewMetrics registers the collectors. meter may be a no-op meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mahfal_lead_submissions_total",
			Help: "Lead submission attempts by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mahfal_lead_submit_duration_seconds",
			Help:    "Time spent waiting for the intake API.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mahfal_wizard_transitions_total",
			Help: "Wizard state transitions.",
		}, []string{"from", "to"}),
	}
	m.registry.MustRegister(m.submissions, m.duration, m.transitions)

	var err error
	m.otelSubmissions, err = meter.Int64Counter("mahfal.lead.submissions",
		metric.WithDescription("Lead submission attempts"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, err
	}
	m.otelDuration, err = meter.Float64Histogram("mahfal.lead.submit.duration",
		metric.WithDescription("Intake API latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Transition(from, to string) {
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) SubmissionFinished(outcome string, elapsed time.Duration) {
	m.submissions.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())

	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.otelSubmissions.Add(ctx, 1, attrs)
	m.otelDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// Push sends the registry to a Pushgateway at url.
func (m *Metrics) Push(ctx context.Context, url string) error {
	if err := push.New(url, PushJob).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
