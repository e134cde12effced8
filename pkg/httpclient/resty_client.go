package httpclient

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options tunes the shared resty client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient from opts.
func NewRestyClient(opts Options) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(opts)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(Options{Timeout: timeout})
}

func newRestyBaseClient(opts Options) *resty.Client {
	c := resty.New()
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		c.SetHeader("User-Agent", ua)
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
// Non-2xx responses are returned without error; callers interpret the status.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
