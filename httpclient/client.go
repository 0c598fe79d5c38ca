// Package httpclient is the request/response transport used by the feature
// data sources. Every call carries its own timeout budget.
package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout   = 20 * time.Second
	DefaultUserAgent = "baselinedev"
)

// Options are per-request settings. A zero Timeout uses the client default.
type Options struct {
	Timeout time.Duration
	Headers map[string]string
	Query   map[string]string
}

// Response is the status and raw body of a completed request.
type Response struct {
	Status int
	Data   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// StatusError is returned by CheckStatus for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d; body: %s", e.URL, e.Status, abbreviate(e.Body, 200))
}

// CheckStatus returns a *StatusError when resp is not 2xx.
func CheckStatus(url string, resp *Response) error {
	if resp.OK() {
		return nil
	}
	return &StatusError{URL: url, Status: resp.Status, Body: string(resp.Data)}
}

// Client is the transport abstraction consumed by the resolver.
// Errors are transport failures only; HTTP status is reported in Response.
type Client interface {
	Get(ctx context.Context, url string, opts Options) (*Response, error)
	Post(ctx context.Context, url string, body any, opts Options) (*Response, error)
	Head(ctx context.Context, url string, opts Options) (*Response, error)
}

// RestyClient implements Client with resty.
type RestyClient struct {
	http    *resty.Client
	timeout time.Duration
}

func New() *RestyClient {
	c := resty.New().
		SetTimeout(DefaultTimeout).
		SetHeader("User-Agent", DefaultUserAgent).
		SetHeader("Accept", "application/json")
	return &RestyClient{http: c, timeout: DefaultTimeout}
}

func (c *RestyClient) Get(ctx context.Context, url string, opts Options) (*Response, error) {
	return c.do(ctx, resty.MethodGet, url, nil, opts)
}

func (c *RestyClient) Post(ctx context.Context, url string, body any, opts Options) (*Response, error) {
	return c.do(ctx, resty.MethodPost, url, body, opts)
}

func (c *RestyClient) Head(ctx context.Context, url string, opts Options) (*Response, error) {
	return c.do(ctx, resty.MethodHead, url, nil, opts)
}

func (c *RestyClient) do(ctx context.Context, method, url string, body any, opts Options) (*Response, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.http.R().SetContext(ctx)
	if len(opts.Headers) > 0 {
		req.SetHeaders(opts.Headers)
	}
	if len(opts.Query) > 0 {
		req.SetQueryParams(opts.Query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}

	return &Response{Status: resp.StatusCode(), Data: resp.Body()}, nil
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
