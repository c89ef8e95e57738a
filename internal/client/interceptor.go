package client

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sparkrunner/portal/internal/telemetry"
)

// TokenSource supplies the current session token.
type TokenSource interface {
	Get() (string, bool)
}

// UnauthorizedNotifier is told about every 401 response.
// Implementations must be idempotent, concurrent requests may each notify.
type UnauthorizedNotifier interface {
	NotifyUnauthorized()
}

// bearerTransport attaches the stored token to every outgoing request.
// With no token stored the request is sent unauthenticated.
type bearerTransport struct {
	tokens TokenSource
	next   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.next.RoundTrip(req)
	}

	token, ok := t.tokens.Get()
	if !ok || token == "" {
		return t.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+token)

	return t.next.RoundTrip(req)
}

// unauthorizedTransport notifies once per 401 response and hands the
// response back untouched.
type unauthorizedTransport struct {
	service  string
	notifier UnauthorizedNotifier
	next     http.RoundTripper
}

func (t *unauthorizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		log.Debug().
			Str("service", t.service).
			Str("path", req.URL.Path).
			Msg("unauthorized response")

		telemetry.GetMetrics().UnauthorizedTotal.Add(req.Context(), 1,
			metric.WithAttributes(attribute.String("service", t.service)))

		if t.notifier != nil {
			t.notifier.NotifyUnauthorized()
		}
	}

	return resp, nil
}
