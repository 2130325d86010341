package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captured struct {
	method string
	auth   string
	ctype  string
	body   Request
}

// newServer answers every request with status and body and reports what it received.
func newServer(t *testing.T, status int, body string) (*httptest.Server, <-chan captured) {
	t.Helper()
	ch := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req Request
		_ = json.Unmarshal(raw, &req)
		select {
		case ch <- captured{method: r.Method, auth: r.Header.Get("Authorization"), ctype: r.Header.Get("Content-Type"), body: req}:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, ch
}

func TestComplete_Success(t *testing.T) {
	srv, ch := newServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"Use the cleanser first."}}]}`)
	c := NewClient(Config{URL: srv.URL, APIKey: "sk-test", Model: "gpt-4o-mini"})

	reply, err := c.Complete(context.Background(), []Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
	}, 200)
	require.NoError(t, err)
	require.Equal(t, "Use the cleanser first.", reply)

	got := <-ch
	require.Equal(t, http.MethodPost, got.method)
	require.Equal(t, "Bearer sk-test", got.auth)
	require.Equal(t, "application/json", got.ctype)
	require.Equal(t, "gpt-4o-mini", got.body.Model)
	require.Equal(t, 200, got.body.MaxTokens)
	require.Len(t, got.body.Messages, 2)
	require.Equal(t, "user", got.body.Messages[1].Role)
}

func TestComplete_NoAPIKeyOmitsHeader(t *testing.T) {
	srv, ch := newServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	c := NewClient(Config{URL: srv.URL})

	_, err := c.Complete(context.Background(), nil, 0)
	require.NoError(t, err)

	got := <-ch
	require.Empty(t, got.auth)
	require.Equal(t, DefaultModel, got.body.Model)
}

func TestComplete_SoftFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		noCont bool
	}{
		{"missing choices", http.StatusOK, `{"id":"x"}`, true},
		{"empty choices", http.StatusOK, `{"choices":[]}`, true},
		{"missing message", http.StatusOK, `{"choices":[{}]}`, true},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"content":""}}]}`, true},
		{"non-string content", http.StatusOK, `{"choices":[{"message":{"content":42}}]}`, true},
		{"null content", http.StatusOK, `{"choices":[{"message":{"content":null}}]}`, true},
		{"not json", http.StatusOK, `<html>oops</html>`, false},
		{"api error", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			c := NewClient(Config{URL: srv.URL})

			reply, err := c.Complete(context.Background(), nil, 0)
			require.Error(t, err)
			require.Empty(t, reply)
			require.Equal(t, tt.noCont, errors.Is(err, ErrNoContent))
		})
	}
}

func TestComplete_StatusError(t *testing.T) {
	srv, _ := newServer(t, http.StatusTooManyRequests, `{"error":"slow down"}`)
	c := NewClient(Config{URL: srv.URL})

	_, err := c.Complete(context.Background(), nil, 0)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestComplete_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{URL: url}).Complete(context.Background(), nil, 0)
	require.Error(t, err)
}

func TestComplete_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(Config{URL: srv.URL}).Complete(ctx, nil, 0)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{})
	require.Equal(t, DefaultURL, c.cfg.URL)
	require.Equal(t, DefaultModel, c.cfg.Model)
	require.NotNil(t, c.cfg.HTTPClient)
}
