package publishers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/infodk-scraper/pkg/httpclient"
)

// Event attributes are mirrored into these request headers.
var attributeHeaders = map[string]string{
	"article_id": "X-Article-Id",
	"source":     "X-Article-Source",
}

// httpPublisher delivers each event as a JSON request to a webhook.
type httpPublisher struct {
	id     string
	cfg    HTTPPublisherConfig
	client *resty.Client
	log    Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &httpPublisher{
		id:     cfg.ID,
		cfg:    *cfg.HTTP,
		client: httpclient.NewRestyHTTPClient(timeout),
		log:    orDiscard(log),
	}, nil
}

func (h *httpPublisher) ID() string   { return h.id }
func (h *httpPublisher) Type() string { return TypeHTTP }

// Publish sends evt and treats anything outside 2xx as a failed delivery.
func (h *httpPublisher) Publish(ctx context.Context, evt Event) error {
	method := h.cfg.Method
	if method == "" {
		method = http.MethodPost
	}

	resp, err := h.request(ctx, evt).Execute(method, h.cfg.URL)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, h.cfg.URL, err)
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return fmt.Errorf("%s %s: status %d: %s", method, h.cfg.URL, code, snippet(resp.Body()))
	}

	h.log.DebugObj("article delivered to webhook", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"article_id":   evt.ArticleID,
		"status":       resp.StatusCode(),
	})
	return nil
}

func (h *httpPublisher) request(ctx context.Context, evt Event) *resty.Request {
	req := h.client.R().SetContext(ctx).SetHeaders(h.cfg.Headers)
	for attr, value := range evt.attributes() {
		if header, ok := attributeHeaders[attr]; ok && value != "" {
			req.SetHeader(header, value)
		}
	}
	return req.SetHeader("Content-Type", "application/json").SetBody(evt)
}

// snippet trims a response body for error messages.
func snippet(body []byte) string {
	const limit = 512
	text := strings.TrimSpace(string(body))
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
