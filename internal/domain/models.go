package domain

import "strings"

// ArticleID identifies one article page on the source site.
type ArticleID string

// ParseArticleID trims the raw token; ok is false when nothing is left.
func ParseArticleID(raw string) (ArticleID, bool) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", false
	}
	return ArticleID(id), true
}

func (id ArticleID) String() string { return string(id) }

// RawDocument is one fetched page, consumed once by the extractor.
type RawDocument struct {
	ID          ArticleID
	URL         string
	ContentType string
	Body        []byte
}

// ArticleRecord is the structured output of one extraction.
type ArticleRecord struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
	Body    string   `json:"body"`
}
