package drafting

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// timeoutTransport fails every request with a network timeout.
type timeoutTransport struct {
	calls atomic.Int32
}

func (tt *timeoutTransport) RoundTrip(*http.Request) (*http.Response, error) {
	tt.calls.Add(1)
	return nil, timeoutError{}
}

// flakyTransport fails the first n requests with a timeout, then delegates.
type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	next     http.RoundTripper
}

func (ft *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if ft.calls.Add(1) <= ft.failures {
		return nil, timeoutError{}
	}
	return ft.next.RoundTrip(r)
}

func validRequest() Request {
	return Request{Prompt: "Redija uma contestação", Temperature: 0.7, MaxTokens: 2000}
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_Success(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body.Model)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
			assert.Equal(t, SystemPrompt, body.Messages[0].Content)
			assert.Equal(t, "Redija uma contestação", body.Messages[1].Content)
		}
		assert.Equal(t, 2000, body.MaxTokens)
		assert.InDelta(t, 0.7, body.Temperature, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"EXCELENTÍSSIMO SENHOR..."}}]}`)
	})

	c := New(Options{APIKey: "test-key", Endpoint: srv.URL, Retry: DefaultRetryPolicy()})
	res, err := c.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "EXCELENTÍSSIMO SENHOR...", res.Text)
	assert.Equal(t, 1, res.Attempts)
}

func TestGenerate_TimeoutsExhaustAttempts(t *testing.T) {
	transport := &timeoutTransport{}
	c := New(Options{Endpoint: "http://drafting.invalid/v1/chat/completions", Retry: DefaultRetryPolicy(), Transport: transport})

	res, err := c.Generate(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, int32(3), transport.calls.Load())
	assert.Equal(t, 3, res.Attempts)

	var derr *DraftError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, Timeout, derr.Kind)
	assert.Equal(t, 3, derr.Attempts)
	assert.Contains(t, derr.Error(), "3 tentativas")
}

func TestGenerate_RecoversAfterTimeout(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"choices":[{"message":{"content":"texto"}}]}`)
	})
	transport := &flakyTransport{failures: 2, next: http.DefaultTransport}
	c := New(Options{Endpoint: srv.URL, Retry: DefaultRetryPolicy(), Transport: transport})

	res, err := c.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "texto", res.Text)
	assert.Equal(t, 3, res.Attempts)
}

func TestGenerate_HTTPStatusIsNotRetried(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantBalance bool
	}{
		{name: "Payment required", status: http.StatusPaymentRequired, wantBalance: true},
		{name: "Unauthorized", status: http.StatusUnauthorized},
		{name: "Server error", status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				io.WriteString(w, `{"error":"nope"}`)
			})
			c := New(Options{Endpoint: srv.URL, Retry: DefaultRetryPolicy()})

			_, err := c.Generate(context.Background(), validRequest())
			require.Error(t, err)
			assert.Equal(t, int32(1), calls.Load())

			var derr *DraftError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, HTTPStatus, derr.Kind)
			assert.Equal(t, tt.status, derr.StatusCode)
			assert.Equal(t, tt.wantBalance, derr.InsufficientBalance())
			assert.Contains(t, derr.Error(), `{"error":"nope"}`)
			if tt.wantBalance {
				assert.Contains(t, derr.Error(), "Saldo insuficiente")
			}
		})
	}
}

func TestGenerate_IncompleteResponse(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, `{"choices":[]}`)
	})

	c := New(Options{Endpoint: srv.URL, Retry: DefaultRetryPolicy()})
	_, err := c.Generate(context.Background(), validRequest())
	assert.True(t, IsKind(err, IncompleteResponse))
	assert.Equal(t, int32(1), calls.Load())

	calls.Store(0)
	retrying := New(Options{Endpoint: srv.URL, Retry: RetryPolicy{MaxAttempts: 3, RetryIncomplete: true}})
	_, err = retrying.Generate(context.Background(), validRequest())
	assert.True(t, IsKind(err, IncompleteResponse))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGenerate_InvalidRequest(t *testing.T) {
	transport := &timeoutTransport{}
	c := New(Options{Endpoint: "http://drafting.invalid", Retry: DefaultRetryPolicy(), Transport: transport})

	tests := []struct {
		name string
		req  Request
	}{
		{name: "Temperature above one", req: Request{Prompt: "x", Temperature: 1.2, MaxTokens: 10}},
		{name: "Negative temperature", req: Request{Prompt: "x", Temperature: -0.1, MaxTokens: 10}},
		{name: "Zero max tokens", req: Request{Prompt: "x", Temperature: 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
	assert.Equal(t, int32(0), transport.calls.Load())
}

func TestGenerate_CancelledContextStopsRetries(t *testing.T) {
	transport := &timeoutTransport{}
	c := New(Options{
		Endpoint:  "http://drafting.invalid",
		Retry:     RetryPolicy{MaxAttempts: 5, Delay: time.Hour},
		Transport: transport,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := c.Generate(ctx, validRequest())
	require.Error(t, err)
	assert.Equal(t, int32(1), transport.calls.Load())
	assert.True(t, errors.Is(err, context.Canceled) || IsKind(err, Transport))
}
