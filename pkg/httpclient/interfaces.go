package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// IsSuccess reports whether resp carries a 2xx status.
func IsSuccess(resp Response) bool {
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
