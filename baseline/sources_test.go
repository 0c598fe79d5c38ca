package baseline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"baselinedev/config"
	"baselinedev/httpclient"

	"github.com/stretchr/testify/require"
)

func TestWebStatusSourcePaginates(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/features", r.URL.Path)
		require.Equal(t, "baseline_status:newly", r.URL.Query().Get("q"))
		require.Equal(t, "100", r.URL.Query().Get("page_size"))
		requests.Add(1)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page_token") {
		case "":
			fmt.Fprint(w, `{"data":[{"feature_id":"has","name":":has()","baseline":{"status":"newly","low_date":"2023-12-19"}}],
				"metadata":{"next_page_token":"page2","total":2}}`)
		case "page2":
			fmt.Fprint(w, `{"data":[{"feature_id":"nesting","name":"Nesting","baseline":{"status":"newly","low_date":"2023-12-11"}}],
				"metadata":{"total":2}}`)
		default:
			http.Error(w, "bad token", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	src := NewWebStatusSource(httpclient.New(), srv.URL+"/", "baseline_status:newly")
	features, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"has", "nesting"}, ids(features))
	require.Equal(t, int32(2), requests.Load())
}

func TestWebStatusSourceStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewWebStatusSource(httpclient.New(), srv.URL, "").Fetch(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestWebStatusSourcePing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	src := NewWebStatusSource(httpclient.New(), srv.URL, "")
	require.True(t, src.Ping(context.Background()))

	srv.Close()
	require.False(t, src.Ping(context.Background()))
}

func TestWebFeaturesSourceTriesMirrorsInOrder(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer broken.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"features":{"grid":{"name":"Grid","status":{"baseline":"high"}}}}`)
	}))
	defer good.Close()

	src := NewWebFeaturesSource(httpclient.New(), []string{broken.URL + "/data.json", good.URL + "/data.json"})
	features, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"grid"}, ids(features))
}

func TestWebFeaturesSourceAllMirrorsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	_, err := NewWebFeaturesSource(httpclient.New(), []string{srv.URL}).Fetch(context.Background())
	require.Error(t, err)

	_, err = NewWebFeaturesSource(httpclient.New(), nil).Fetch(context.Background())
	require.Error(t, err)
}

func TestBundledSourceOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.json")
	require.NoError(t, os.WriteFile(path, []byte(arrayPayload), 0600))

	features, err := NewBundledSource(path).Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"css-grid", "flexbox"}, ids(features))

	_, err = NewBundledSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	require.Error(t, err)
}

func TestResolverFromConfigFallsThroughTiers(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer primary.Close()

	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, keyedPayload)
	}))
	defer mirror.Close()

	cfg := &config.Config{
		PrimaryURL:    primary.URL,
		SecondaryURLs: []string{mirror.URL},
		CacheTTL:      config.DefaultCacheTTL,
	}
	store := &memoryStore{}
	r := NewResolverFromConfig(cfg, httpclient.New(), store)

	require.NoError(t, r.Initialize(context.Background(), true))
	require.Equal(t, SourceSecondary, r.Snapshot().Source)
	require.Equal(t, []string{"css-grid"}, ids(r.Search("grid")))
	require.Equal(t, 1, store.saves)
	require.False(t, r.CheckConnection(context.Background()))
}
