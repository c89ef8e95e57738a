package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/sparkrunner/portal"
)

// Metrics holds the OpenTelemetry instruments used by the portal client
type Metrics struct {
	// HTTP client metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Session metrics
	UnauthorizedTotal metric.Int64Counter
	LoginsTotal       metric.Int64Counter
	LoginFailures     metric.Int64Counter
	LogoutsTotal      metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary.
// Instruments bind to whichever meter provider is global at first use.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.HTTPRequestsTotal, _ = meter.Int64Counter(
		"sparkrunner.http.requests.total",
		metric.WithDescription("Total number of backend requests"),
		metric.WithUnit("{request}"),
	)

	m.HTTPRequestDuration, _ = meter.Float64Histogram(
		"sparkrunner.http.request.duration",
		metric.WithDescription("Duration of backend requests"),
		metric.WithUnit("ms"),
	)

	m.UnauthorizedTotal, _ = meter.Int64Counter(
		"sparkrunner.session.unauthorized.total",
		metric.WithDescription("Total number of 401 responses that invalidated the session"),
		metric.WithUnit("{response}"),
	)

	m.LoginsTotal, _ = meter.Int64Counter(
		"sparkrunner.session.logins.total",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)

	m.LoginFailures, _ = meter.Int64Counter(
		"sparkrunner.session.login_failures.total",
		metric.WithDescription("Total number of failed login attempts"),
		metric.WithUnit("{login}"),
	)

	m.LogoutsTotal, _ = meter.Int64Counter(
		"sparkrunner.session.logouts.total",
		metric.WithDescription("Total number of logout transitions, forced or not"),
		metric.WithUnit("{logout}"),
	)

	return m
}
