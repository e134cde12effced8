package extractor

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/infodk-scraper/internal/domain"
	"golang.org/x/net/html/charset"
)

const (
	// BylineMarker is the class of the list holding an article's authors.
	BylineMarker = "byline inline"
	// BodyMarker is the class of the container holding the article text.
	BodyMarker = "field field-name-body"

	FieldTitle   = "title"
	FieldAuthors = "authors"
	FieldBody    = "body"
)

var (
	TitleSelector  = Element("h1")
	BylineSelector = ElementWithClass("ul", BylineMarker)
	BodySelector   = ElementWithClass("div", BodyMarker)
)

// Extractor reads article fields out of one parsed page.
type Extractor struct {
	doc *goquery.Document
}

// New parses raw HTML.
func New(raw []byte) (*Extractor, error) {
	return parse(raw, "")
}

// FromDocument parses a fetched page, honouring its declared charset.
func FromDocument(doc domain.RawDocument) (*Extractor, error) {
	return parse(doc.Body, doc.ContentType)
}

// Extract parses doc and returns its record in one step.
func Extract(doc domain.RawDocument) (domain.ArticleRecord, error) {
	ex, err := FromDocument(doc)
	if err != nil {
		return domain.ArticleRecord{}, err
	}
	return ex.Record()
}

func parse(raw []byte, contentType string) (*Extractor, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ParseError{Reason: "empty document"}
	}
	if sniffed := http.DetectContentType(raw); !strings.HasPrefix(sniffed, "text/") {
		return nil, &ParseError{Reason: "content is not markup (sniffed " + sniffed + ")"}
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader(raw, contentType))
	if err != nil {
		return nil, &ParseError{Reason: "build document", Err: err}
	}
	return &Extractor{doc: doc}, nil
}

// utf8Reader passes valid UTF-8 through untouched and otherwise decodes
// using the declared or sniffed charset, falling back to the raw bytes.
func utf8Reader(raw []byte, contentType string) io.Reader {
	if utf8.Valid(raw) {
		return bytes.NewReader(raw)
	}
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return bytes.NewReader(raw)
	}
	return r
}

// first returns the fragments of the first element matching sel; ok is false
// when no element matches.
func (e *Extractor) first(sel Selector) (fragments []string, ok bool) {
	match := e.doc.FindMatcher(sel).First()
	if match.Length() == 0 {
		return nil, false
	}
	return textFragments(match.Get(0)), true
}

// Title returns the first text fragment of the first h1. Text after nested
// markup inside the heading is not included.
func (e *Extractor) Title() (string, error) {
	fragments, ok := e.first(TitleSelector)
	if !ok || len(fragments) == 0 {
		return "", &ExtractionError{Field: FieldTitle, Selector: TitleSelector.String(), Err: ErrTitleNotFound}
	}
	return fragments[0], nil
}

// Authors returns every text fragment of the byline list, one entry each.
func (e *Extractor) Authors() ([]string, error) {
	fragments, ok := e.first(BylineSelector)
	if !ok {
		return nil, &ExtractionError{Field: FieldAuthors, Selector: BylineSelector.String(), Err: ErrAuthorsNotFound}
	}
	if fragments == nil {
		fragments = []string{}
	}
	return fragments, nil
}

// Body returns the body container's text fragments joined by single spaces.
func (e *Extractor) Body() (string, error) {
	fragments, ok := e.first(BodySelector)
	if !ok {
		return "", &ExtractionError{Field: FieldBody, Selector: BodySelector.String(), Err: ErrBodyNotFound}
	}
	return strings.Join(fragments, " "), nil
}

// Record extracts title, authors and body in that order. Any failure
// discards the whole record.
func (e *Extractor) Record() (domain.ArticleRecord, error) {
	title, err := e.Title()
	if err != nil {
		return domain.ArticleRecord{}, err
	}
	authors, err := e.Authors()
	if err != nil {
		return domain.ArticleRecord{}, err
	}
	body, err := e.Body()
	if err != nil {
		return domain.ArticleRecord{}, err
	}
	return domain.ArticleRecord{Title: title, Authors: authors, Body: body}, nil
}
