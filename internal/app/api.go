package app

import (
	"context"
	"fmt"

	"github.com/samvad-hq/infodk-scraper/internal/domain"
	"github.com/samvad-hq/infodk-scraper/internal/extractor"
	"github.com/samvad-hq/infodk-scraper/internal/logger"
)

// ArticleFetcher retrieves the raw page for an article.
type ArticleFetcher interface {
	URLFor(id domain.ArticleID) string
	Fetch(ctx context.Context, id domain.ArticleID) (domain.RawDocument, error)
}

// API is the programmatic entry point: identifier in, ArticleRecord out.
type API struct {
	fetcher ArticleFetcher
	log     logger.Logger
}

// NewAPI wires the API around a fetcher.
func NewAPI(fetcher ArticleFetcher, log logger.Logger) *API {
	return &API{fetcher: fetcher, log: logger.Ensure(log)}
}

// URLFor exposes the page address used for id.
func (a *API) URLFor(id domain.ArticleID) string {
	return a.fetcher.URLFor(id)
}

// ArticleFromID fetches the article page and extracts its record. Fetch,
// parse and extraction errors are returned as-is; there is no partial record.
func (a *API) ArticleFromID(ctx context.Context, id domain.ArticleID) (domain.ArticleRecord, error) {
	if a == nil || a.fetcher == nil {
		return domain.ArticleRecord{}, fmt.Errorf("article api is not initialized")
	}

	doc, err := a.fetcher.Fetch(ctx, id)
	if err != nil {
		return domain.ArticleRecord{}, err
	}

	rec, err := extractor.Extract(doc)
	if err != nil {
		return domain.ArticleRecord{}, err
	}

	a.log.DebugObj("article extracted", "article_meta", map[string]any{
		"article_id":  id.String(),
		"title":       rec.Title,
		"authors":     len(rec.Authors),
		"body_length": len(rec.Body),
	})
	return rec, nil
}
