package publishers

import (
	"time"

	"github.com/samvad-hq/infodk-scraper/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	Source      string               `json:"source"`
	ArticleID   string               `json:"article_id"`
	URL         string               `json:"url"`
	Article     domain.ArticleRecord `json:"article"`
	CollectedAt time.Time            `json:"collected_at"`
}

// NewEvent constructs an Event for one extracted article.
func NewEvent(source string, id domain.ArticleID, url string, article domain.ArticleRecord) Event {
	return Event{
		Source:      source,
		ArticleID:   id.String(),
		URL:         url,
		Article:     article,
		CollectedAt: time.Now().UTC(),
	}
}

// attributes are attached to broker messages so consumers can route without decoding.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"article_id": e.ArticleID,
		"source":     e.Source,
	}
}
