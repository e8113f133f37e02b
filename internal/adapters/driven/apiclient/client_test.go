package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/medibot/internal/core/domain"
)

var errDown = errors.New("test provider unavailable")

func newTestClient(url string) *Client {
	c := New("test", url+"/", time.Second, errDown)
	c.Header.Set("Authorization", "Bearer k")
	return c
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["q"]})
	}))
	defer srv.Close()

	var out struct{ Echo string }
	err := newTestClient(srv.URL).PostJSON(context.Background(), "/v1/echo", map[string]string{"q": "diabetes"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "diabetes", out.Echo)
}

func TestPostJSON_Retries(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantErr   []error
	}{
		{name: "recovers after server error", statuses: []int{500, 200}, wantCalls: 2},
		{name: "gives up after retries", statuses: []int{503, 503, 503}, wantCalls: 3, wantErr: []error{errDown}},
		{name: "rate limit", statuses: []int{429, 429, 429}, wantCalls: 3, wantErr: []error{errDown, domain.ErrRateLimited}},
		{name: "client error is final", statuses: []int{400}, wantCalls: 1, wantErr: []error{errDown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				n := calls.Add(1)
				w.WriteHeader(tt.statuses[n-1])
				_, _ = w.Write([]byte(`{}`))
			}))
			defer srv.Close()

			var out map[string]any
			err := newTestClient(srv.URL).PostJSON(context.Background(), "/x", struct{}{}, &out)

			assert.Equal(t, tt.wantCalls, calls.Load())
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestPing_DoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Ping(context.Background(), "/models")

	assert.ErrorIs(t, err, errDown)
	assert.Contains(t, err.Error(), "status 503")
	assert.Equal(t, int32(1), calls.Load())
}

func TestPostJSON_TransportFailure(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	c.Retries = 0

	err := c.PostJSON(context.Background(), "/x", struct{}{}, &struct{}{})

	assert.ErrorIs(t, err, errDown)
}

func TestBackoffAndRetryAfter(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, backoff(0))
	assert.Equal(t, 800*time.Millisecond, backoff(2))
	assert.Equal(t, maxDelay, backoff(10))

	assert.Equal(t, 3*time.Second, retryAfter("3"))
	assert.Zero(t, retryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
	assert.Zero(t, retryAfter(""))
}
