package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samvad-hq/infodk-scraper/internal/config"
	"github.com/samvad-hq/infodk-scraper/internal/domain"
	"github.com/samvad-hq/infodk-scraper/internal/extractor"
	"github.com/samvad-hq/infodk-scraper/internal/fetcher"
)

const articleHTML = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Information</title></head>
<body>
  <h1>Breaking News</h1>
  <ul class="byline inline"><li>Lasse Ellegaard</li></ul>
  <div class="field field-name-body">
    <p>Hello</p>
    <p>world.</p>
  </div>
</body></html>`

// newSite serves articleHTML at /551683, a page without a byline at /1 and 404 elsewhere.
func newSite(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/551683":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(articleHTML))
		case "/1":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><body><h1>Forside</h1></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestAPI(t *testing.T, baseURL string) *API {
	t.Helper()
	return NewAPIFromConfig(&config.Config{BaseURL: baseURL, HTTPTimeout: 2 * time.Second}, nil)
}

func TestArticleFromIDEndToEnd(t *testing.T) {
	api := newTestAPI(t, newSite(t, nil).URL)

	rec, err := api.ArticleFromID(context.Background(), "551683")
	if err != nil {
		t.Fatalf("ArticleFromID: %v", err)
	}
	want := domain.ArticleRecord{
		Title:   "Breaking News",
		Authors: []string{"Lasse Ellegaard"},
		Body:    "Hello world.",
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestArticleFromIDIsIdempotent(t *testing.T) {
	var hits atomic.Int32
	api := newTestAPI(t, newSite(t, &hits).URL)

	first, err := api.ArticleFromID(context.Background(), "551683")
	if err != nil {
		t.Fatalf("first ArticleFromID: %v", err)
	}
	second, err := api.ArticleFromID(context.Background(), "551683")
	if err != nil {
		t.Fatalf("second ArticleFromID: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("records differ (-first +second):\n%s", diff)
	}
	if hits.Load() != 2 {
		t.Fatalf("expected one request per call, got %d", hits.Load())
	}
}

func TestArticleFromIDUnknownArticleIsFetchError(t *testing.T) {
	api := newTestAPI(t, newSite(t, nil).URL)

	rec, err := api.ArticleFromID(context.Background(), "does-not-exist")
	var fe *fetcher.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 FetchError, got %v", err)
	}
	if diff := cmp.Diff(domain.ArticleRecord{}, rec); diff != "" {
		t.Fatalf("expected no record (-want +got):\n%s", diff)
	}
}

func TestArticleFromIDNonArticlePageIsExtractionError(t *testing.T) {
	api := newTestAPI(t, newSite(t, nil).URL)

	_, err := api.ArticleFromID(context.Background(), "1")
	if !errors.Is(err, extractor.ErrAuthorsNotFound) {
		t.Fatalf("expected ErrAuthorsNotFound, got %v", err)
	}
}

func TestArticleFromIDUninitialized(t *testing.T) {
	var api *API
	if _, err := api.ArticleFromID(context.Background(), "1"); err == nil {
		t.Fatalf("expected error from nil API")
	}
}
