package baseline

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"baselinedev/config"
	"baselinedev/httpclient"

	"github.com/tidwall/gjson"
)

const (
	PrimaryTimeout   = 15 * time.Second
	SecondaryTimeout = 10 * time.Second
	PingTimeout      = 5 * time.Second

	webStatusPageSize = 100
	webStatusMaxPages = 25
)

//go:embed data/bundled.json
var bundledData []byte

// FeatureSource produces the full feature list from one origin.
type FeatureSource interface {
	Name() string
	Fetch(ctx context.Context) ([]WebFeature, error)
}

// WebStatusSource reads the webstatus.dev features API, following
// page_token pagination up to a bounded number of pages.
type WebStatusSource struct {
	client  httpclient.Client
	baseURL string
	query   string
	timeout time.Duration
}

func NewWebStatusSource(client httpclient.Client, baseURL, query string) *WebStatusSource {
	return &WebStatusSource{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		query:   query,
		timeout: PrimaryTimeout,
	}
}

func (s *WebStatusSource) Name() string { return "webstatus.dev" }

func (s *WebStatusSource) endpoint() string {
	return s.baseURL + "/v1/features"
}

// Fetch shares one timeout budget across all pages.
func (s *WebStatusSource) Fetch(ctx context.Context) ([]WebFeature, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var all []WebFeature
	token := ""
	for page := 0; page < webStatusMaxPages; page++ {
		query := map[string]string{"page_size": strconv.Itoa(webStatusPageSize)}
		if s.query != "" {
			query["q"] = s.query
		}
		if token != "" {
			query["page_token"] = token
		}

		resp, err := s.client.Get(ctx, s.endpoint(), httpclient.Options{Timeout: s.timeout, Query: query})
		if err != nil {
			return nil, err
		}
		if err := httpclient.CheckStatus(s.endpoint(), resp); err != nil {
			return nil, err
		}

		features, err := DecodeFeatures(resp.Data)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page+1, err)
		}
		all = append(all, features...)

		token = gjson.GetBytes(resp.Data, "metadata.next_page_token").String()
		if token == "" {
			break
		}
		if page == webStatusMaxPages-1 {
			config.Debugf("[Resolver] webstatus.dev pagination stopped after %d pages", webStatusMaxPages)
		}
	}

	if len(all) == 0 {
		return nil, errors.New("webstatus.dev returned no features")
	}
	return all, nil
}

// Ping checks reachability with a HEAD request.
func (s *WebStatusSource) Ping(ctx context.Context) bool {
	resp, err := s.client.Head(ctx, s.endpoint(), httpclient.Options{Timeout: PingTimeout})
	if err != nil {
		config.Debugf("[Resolver] Ping %s failed: %v", s.endpoint(), err)
		return false
	}
	return resp.OK()
}

// WebFeaturesSource reads a web-features data.json dump, trying each
// mirror in order.
type WebFeaturesSource struct {
	client  httpclient.Client
	urls    []string
	timeout time.Duration
}

func NewWebFeaturesSource(client httpclient.Client, urls []string) *WebFeaturesSource {
	return &WebFeaturesSource{
		client:  client,
		urls:    append([]string(nil), urls...),
		timeout: SecondaryTimeout,
	}
}

func (s *WebFeaturesSource) Name() string { return "web-features" }

func (s *WebFeaturesSource) Fetch(ctx context.Context) ([]WebFeature, error) {
	if len(s.urls) == 0 {
		return nil, errors.New("no web-features mirrors configured")
	}

	var errs []error
	for _, url := range s.urls {
		features, err := s.fetchOne(ctx, url)
		if err == nil {
			return features, nil
		}
		config.Debugf("[Resolver] Mirror %s failed: %v", url, err)
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

func (s *WebFeaturesSource) fetchOne(ctx context.Context, url string) ([]WebFeature, error) {
	resp, err := s.client.Get(ctx, url, httpclient.Options{Timeout: s.timeout})
	if err != nil {
		return nil, err
	}
	if err := httpclient.CheckStatus(url, resp); err != nil {
		return nil, err
	}

	features, err := DecodeFeatures(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%s: no features", url)
	}
	return features, nil
}

// BundledSource serves the dataset compiled into the binary, or a file
// that overrides it.
type BundledSource struct {
	path string
}

// NewBundledSource returns the embedded dataset when path is empty.
func NewBundledSource(path string) *BundledSource {
	return &BundledSource{path: path}
}

func (s *BundledSource) Name() string { return "bundled" }

func (s *BundledSource) Fetch(_ context.Context) ([]WebFeature, error) {
	data := bundledData
	if s.path != "" {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("read bundled data: %w", err)
		}
		data = b
	}

	features, err := DecodeFeatures(data)
	if err != nil {
		return nil, fmt.Errorf("decode bundled data: %w", err)
	}
	if len(features) == 0 {
		return nil, errors.New("bundled data contains no features")
	}
	return features, nil
}
