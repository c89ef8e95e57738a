package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkrunner/portal/internal/tokenstore"
)

type countingNotifier struct {
	calls atomic.Int32
}

func (n *countingNotifier) NotifyUnauthorized() {
	n.calls.Add(1)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens TokenSource, notifier UnauthorizedNotifier) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("test", Config{BaseURL: srv.URL + "/api/v1", Timeout: 2 * time.Second}, tokens, notifier)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeBaseURL(t *testing.T) {
	_, err := New("auth", Config{BaseURL: "/api/auth"}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be absolute")
}

func TestNewClients(t *testing.T) {
	clients, err := NewClients(
		Config{BaseURL: "http://auth.example.com/api/auth/"},
		Config{BaseURL: "http://scooter.example.com/api/v1"},
		tokenstore.NewMemoryStore(), nil,
	)
	require.NoError(t, err)
	assert.Equal(t, "auth", clients.Auth.Name())
	assert.Equal(t, "http://auth.example.com/api/auth", clients.Auth.BaseURL())
	assert.Equal(t, "profile", clients.Profile.Name())
	assert.Equal(t, "http://scooter.example.com/api/v1", clients.Profile.BaseURL())
}

func TestClient_AttachesBearerToken(t *testing.T) {
	tokens := tokenstore.NewMemoryStore()
	require.NoError(t, tokens.Set("stored-token"))

	var gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}, tokens, nil)

	err := c.Get(context.Background(), "/ping", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer stored-token", gotAuth)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var hasAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	}, tokenstore.NewMemoryStore(), nil)

	err := c.Get(context.Background(), "/ping", nil, nil)
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

func TestClient_TokenReadOnEveryRequest(t *testing.T) {
	tokens := tokenstore.NewMemoryStore()

	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}, tokens, nil)

	ctx := context.Background()
	require.NoError(t, c.Get(ctx, "/a", nil, nil))
	require.NoError(t, tokens.Set("t1"))
	require.NoError(t, c.Get(ctx, "/b", nil, nil))
	require.NoError(t, tokens.Remove())
	require.NoError(t, c.Get(ctx, "/c", nil, nil))

	assert.Equal(t, []string{"", "Bearer t1", ""}, seen)
}

func TestClient_SendsJSONAndDecodes(t *testing.T) {
	var gotPath, gotMethod, gotContentType, gotRequestID string
	var gotBody map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get(RequestIDHeader)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}, nil, nil)

	var out struct {
		OK bool `json:"ok"`
	}
	err := c.Post(context.Background(), "/things", map[string]any{"name": "x"}, &out)
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.Equal(t, "/api/v1/things", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "x", gotBody["name"])
}

func TestClient_QueryEncoding(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusNoContent)
	}, nil, nil)

	err := c.Get(context.Background(), "/list", url.Values{"offset": {"5"}, "limit": {"10"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "limit=10&offset=5", gotQuery)
}

func TestClient_UnauthorizedNotifiesAndPropagates(t *testing.T) {
	notifier := &countingNotifier{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}, nil, notifier)

	err := c.Get(context.Background(), "/users/1/balance", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), notifier.calls.Load())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "token expired", apiErr.Message)

	// once per response
	err = c.Get(context.Background(), "/users/1/balance", nil, nil)
	require.Error(t, err)
	assert.Equal(t, int32(2), notifier.calls.Load())
}

func TestClient_UnauthorizedWithoutNotifier(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil, nil)

	err := c.Get(context.Background(), "/x", nil, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestClient_ConcurrentUnauthorized(t *testing.T) {
	notifier := &countingNotifier{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil, notifier)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Get(context.Background(), "/x", nil, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), notifier.calls.Load())
}

func TestClient_OtherErrorsDoNotNotify(t *testing.T) {
	notifier := &countingNotifier{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, nil, notifier)

	err := c.Get(context.Background(), "/x", nil, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
	assert.Zero(t, notifier.calls.Load())
}

func TestClient_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}, nil, nil)

	err := c.Get(context.Background(), "/missing", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := New("slow", Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil, nil)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/slow", nil, nil)
	require.Error(t, err)
	assert.Zero(t, StatusCode(err))
}

func TestClient_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}, nil, nil)

	var out map[string]any
	err := c.Get(context.Background(), "/x", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestUserMessage(t *testing.T) {
	withMessage := &APIError{StatusCode: 400, Status: "400 Bad Request", Message: "Amount too large"}
	assert.Equal(t, "Amount too large", UserMessage(withMessage, "Top up failed"))

	withoutMessage := &APIError{StatusCode: 500, Status: "500 Internal Server Error"}
	assert.Equal(t, "Top up failed", UserMessage(withoutMessage, "Top up failed"))

	assert.Equal(t, "Top up failed", UserMessage(errors.New("dial tcp: refused"), "Top up failed"))
}

func TestNewAPIError_ErrorField(t *testing.T) {
	resp := &http.Response{StatusCode: http.StatusConflict}
	apiErr := newAPIError(resp, []byte(`{"error":"email already registered"}`))

	assert.Equal(t, "email already registered", apiErr.Message)
	assert.Equal(t, "409 Conflict", apiErr.Status)
	assert.Contains(t, apiErr.Error(), "email already registered")
}

func TestDurationMillis(t *testing.T) {
	assert.InDelta(t, 1.5, durationMillis(1500*time.Microsecond), 1e-9)
	assert.InDelta(t, 0.25, durationMillis(250*time.Microsecond), 1e-9)
	assert.InDelta(t, 2000.0, durationMillis(2*time.Second), 1e-9)
}
