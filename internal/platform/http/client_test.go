package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(retries int) *Client {
	return NewClient(ClientOptions{
		Timeout:         2 * time.Second,
		RequestsPerSec:  100,
		MaxRetries:      retries,
		MaxRetryTimeout: 5 * time.Second,
		Headers:         map[string]string{"X-Test": "yes"},
	})
}

func TestGetJSONDecodesBodyAndSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		assert.Equal(t, "btc", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"price":"1.5"}`))
	}))
	defer srv.Close()

	var out struct {
		Price string `json:"price"`
	}
	err := newTestClient(0).GetJSON(context.Background(), srv.URL, url.Values{"symbol": {"btc"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "1.5", out.Price)
}

func TestDoRequestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(2).GetJSON(context.Background(), srv.URL, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoRequestDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(3).GetJSON(context.Background(), srv.URL, nil, &out)
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSONRejectsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient(0).GetJSON(context.Background(), srv.URL, nil, &out)
	assert.ErrorContains(t, err, "parsing JSON")
}

func TestDoRequestHonoursCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]any
	err := newTestClient(3).GetJSON(ctx, srv.URL, nil, &out)
	assert.Error(t, err)
}

func TestRetryBudget(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		retries int
		want    time.Duration
	}{
		{"no retries", 10 * time.Second, 0, 10 * time.Second},
		// 300ms + 450ms of sleep
		{"two retries", 10 * time.Second, 2, 30*time.Second + 750*time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RetryBudget(tt.timeout, tt.retries))
		})
	}

	assert.Greater(t, RetryBudget(time.Second, 10), 11*time.Second)
}
