package client

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sparkrunner/portal/internal/telemetry"
)

// RequestIDHeader carries a per request correlation id.
const RequestIDHeader = "X-Request-Id"

type loggingTransport struct {
	service string
	next    http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	started := time.Now()

	if req.Header.Get(RequestIDHeader) == "" {
		if id, err := uuid.NewV7(); err == nil {
			req = req.Clone(req.Context())
			req.Header.Set(RequestIDHeader, id.String())
		}
	}

	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(started)

	m := telemetry.GetMetrics()
	attrs := []attribute.KeyValue{
		attribute.String("service", t.service),
		attribute.String("method", req.Method),
	}

	logger := log.With().
		Str("service", t.service).
		Str("method", req.Method).
		Str("url", req.URL.Redacted()).
		Str("requestID", req.Header.Get(RequestIDHeader)).
		Dur("duration", elapsed).
		Logger()

	if err != nil {
		logger.Debug().Err(err).Msg("http request failed")
		attrs = append(attrs, attribute.Int("status", 0))
	} else {
		logger.Debug().Int("status", resp.StatusCode).Msg("http request")
		attrs = append(attrs, attribute.Int("status", resp.StatusCode))
	}

	m.HTTPRequestsTotal.Add(req.Context(), 1, metric.WithAttributes(attrs...))
	m.HTTPRequestDuration.Record(req.Context(), durationMillis(elapsed),
		metric.WithAttributes(attrs...))

	return resp, err
}

// durationMillis keeps sub millisecond precision for the duration histogram.
func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
