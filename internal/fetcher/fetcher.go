package fetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/samvad-hq/infodk-scraper/internal/domain"
	"github.com/samvad-hq/infodk-scraper/internal/logger"
	"github.com/samvad-hq/infodk-scraper/pkg/httpclient"
)

const snippetLen = 512

// FetchError reports a request that failed in transport or came back with a
// non-success status.
type FetchError struct {
	URL        string
	StatusCode int
	Snippet    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d body: %s", e.URL, e.StatusCode, e.Snippet)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves article pages relative to a base address.
type Fetcher struct {
	client  httpclient.Client
	baseURL string
	log     logger.Logger
}

// New builds a Fetcher; a nil client falls back to a resty client with defaults.
func New(client httpclient.Client, baseURL string, log logger.Logger) *Fetcher {
	if client == nil {
		client = httpclient.NewRestyClient(httpclient.Options{})
	}
	return &Fetcher{
		client:  client,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		log:     logger.Ensure(log),
	}
}

// URLFor returns the page address for id.
func (f *Fetcher) URLFor(id domain.ArticleID) string {
	return f.baseURL + "/" + id.String()
}

// Fetch issues a single GET for the article page. It never retries.
func (f *Fetcher) Fetch(ctx context.Context, id domain.ArticleID) (domain.RawDocument, error) {
	url := f.URLFor(id)
	f.log.DebugObj("fetching article", "fetch_request", map[string]any{
		"article_id": id.String(),
		"url":        url,
	})

	resp, err := f.client.Get(ctx, url, nil)
	if err != nil {
		return domain.RawDocument{}, &FetchError{URL: url, Err: err}
	}

	if !httpclient.IsSuccess(resp) {
		return domain.RawDocument{}, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode(),
			Snippet:    responseSnippet(resp.Body()),
		}
	}

	doc := domain.RawDocument{
		ID:   id,
		URL:  url,
		Body: resp.Body(),
	}
	if h := resp.Header(); h != nil {
		doc.ContentType = h.Get("Content-Type")
	}

	f.log.DebugObj("article fetched", "fetch_result", map[string]any{
		"article_id":   id.String(),
		"status":       resp.StatusCode(),
		"content_type": doc.ContentType,
		"bytes":        len(doc.Body),
	})
	return doc, nil
}

func responseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > snippetLen {
		return s[:snippetLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
