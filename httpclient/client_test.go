package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetSendsHeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "baseline_status:newly", r.URL.Query().Get("q"))
		require.Equal(t, "yes", r.Header.Get("X-Test"))
		require.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := New().Get(context.Background(), srv.URL, Options{
		Headers: map[string]string{"X-Test": "yes"},
		Query:   map[string]string{"q": "baseline_status:newly"},
	})
	require.NoError(t, err)
	require.True(t, resp.OK())
	require.JSONEq(t, `{"ok":true}`, string(resp.Data))
	require.NoError(t, CheckStatus(srv.URL, resp))
}

func TestPostSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "grid", body["query"])
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	resp, err := New().Post(context.Background(), srv.URL, map[string]string{"query": "grid"}, Options{})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.Status)
}

func TestHead(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := New().Head(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	require.True(t, resp.OK())
}

func TestNonSuccessStatusIsNotATransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer srv.Close()

	resp, err := New().Get(context.Background(), srv.URL, Options{})
	require.NoError(t, err)
	require.False(t, resp.OK())

	err = CheckStatus(srv.URL, resp)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusServiceUnavailable, statusErr.Status)
	require.Contains(t, err.Error(), "maintenance")
}

func TestPerRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := New().Get(context.Background(), srv.URL, Options{Timeout: 50 * time.Millisecond})
	require.Error(t, err)
	require.Less(t, time.Since(start), time.Second)
}

func TestAbbreviate(t *testing.T) {
	require.Equal(t, "short", abbreviate("short", 10))
	require.Equal(t, "abcdefg...", abbreviate("abcdefghijklmnop", 10))
	require.Equal(t, "ab", abbreviate("abcdef", 2))
}
