package extractor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samvad-hq/infodk-scraper/internal/domain"
)

const articlePage = `<!DOCTYPE html>
<html lang="da">
<head>
  <meta charset="utf-8">
  <title>Breaking News | Information</title>
</head>
<body>
  <div id="page">
    <h1>Breaking News</h1>
    <ul class="byline inline">
      <li><a href="/author/lasse-ellegaard">Lasse Ellegaard</a></li>
      <li>Mette Nielsen</li>
    </ul>
    <div class="field field-name-body">
      <p>Hello</p>
      <p>world.</p>
    </div>
  </div>
</body>
</html>`

func mustNew(t *testing.T, raw string) *Extractor {
	t.Helper()
	ex, err := New([]byte(raw))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ex
}

func TestRecordFromArticlePage(t *testing.T) {
	rec, err := mustNew(t, articlePage).Record()
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	want := domain.ArticleRecord{
		Title:   "Breaking News",
		Authors: []string{"Lasse Ellegaard", "Mette Nielsen"},
		Body:    "Hello world.",
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestTitleLiteral(t *testing.T) {
	title, err := mustNew(t, `<h1>Breaking News</h1>`).Title()
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if title != "Breaking News" {
		t.Fatalf("Title = %q", title)
	}
}

func TestAuthorsSingleByline(t *testing.T) {
	authors, err := mustNew(t, `<ul class="byline inline">Lasse Ellegaard</ul>`).Authors()
	if err != nil {
		t.Fatalf("Authors: %v", err)
	}
	if diff := cmp.Diff([]string{"Lasse Ellegaard"}, authors); diff != "" {
		t.Fatalf("authors mismatch (-want +got):\n%s", diff)
	}
}

func TestBodyLiteral(t *testing.T) {
	body, err := mustNew(t, `<div class="field field-name-body"><p>Hello</p><p>world.</p></div>`).Body()
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	if body != "Hello world." {
		t.Fatalf("Body = %q", body)
	}
}

func TestBodyIncludesNestedInlineText(t *testing.T) {
	raw := `<div class="field field-name-body"><p>Hello <em>brave</em> new <a href="#">world</a>.</p></div>`
	body, err := mustNew(t, raw).Body()
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	// Fragments are "Hello ", "brave", " new ", "world", "." joined by single spaces.
	if want := "Hello  brave  new  world ."; body != want {
		t.Fatalf("Body = %q, want %q", body, want)
	}
}

func TestTitleKeepsOnlyFirstFragment(t *testing.T) {
	// Known quirk: text after nested markup in the heading is dropped.
	title, err := mustNew(t, `<h1>Breaking <em>News</em> today</h1>`).Title()
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if title != "Breaking " {
		t.Fatalf("Title = %q, want %q", title, "Breaking ")
	}
}

func TestTitleSkipsWhitespaceBeforeNestedText(t *testing.T) {
	title, err := mustNew(t, "<h1>\n  <span>Overskrift</span>\n</h1>").Title()
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if title != "Overskrift" {
		t.Fatalf("Title = %q", title)
	}
}

func TestTitleUsesFirstHeadingOnly(t *testing.T) {
	title, err := mustNew(t, `<h1>First</h1><h1>Second</h1>`).Title()
	if err != nil || title != "First" {
		t.Fatalf("Title = %q, %v", title, err)
	}
}

func TestAuthorsKeepDocumentOrderAndDuplicates(t *testing.T) {
	raw := `<ul class="byline inline"><li>B</li><li><span>A</span></li><li>B</li></ul>`
	authors, err := mustNew(t, raw).Authors()
	if err != nil {
		t.Fatalf("Authors: %v", err)
	}
	if diff := cmp.Diff([]string{"B", "A", "B"}, authors); diff != "" {
		t.Fatalf("authors mismatch (-want +got):\n%s", diff)
	}
}

func TestAuthorsAreNotTrimmed(t *testing.T) {
	authors, err := mustNew(t, `<ul class="byline inline"><li> Af Lasse Ellegaard </li></ul>`).Authors()
	if err != nil {
		t.Fatalf("Authors: %v", err)
	}
	if diff := cmp.Diff([]string{" Af Lasse Ellegaard "}, authors); diff != "" {
		t.Fatalf("authors mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkersRequireExactClass(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "extra class", raw: `<ul class="byline inline extra"><li>X</li></ul>`},
		{name: "reordered classes", raw: `<ul class="inline byline"><li>X</li></ul>`},
		{name: "different case", raw: `<ul class="Byline Inline"><li>X</li></ul>`},
		{name: "wrong tag", raw: `<div class="byline inline"><li>X</li></div>`},
		{name: "no class", raw: `<ul><li>X</li></ul>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := mustNew(t, tc.raw).Authors()
			if !errors.Is(err, ErrAuthorsNotFound) {
				t.Fatalf("expected ErrAuthorsNotFound, got %v", err)
			}
		})
	}
}

func TestMissingFieldsAreDistinguishable(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  error
		field string
	}{
		{
			name:  "no heading",
			raw:   `<ul class="byline inline"><li>A</li></ul><div class="field field-name-body">x</div>`,
			want:  ErrTitleNotFound,
			field: FieldTitle,
		},
		{
			name:  "empty heading",
			raw:   `<h1><img src="x.png"></h1><ul class="byline inline"><li>A</li></ul><div class="field field-name-body">x</div>`,
			want:  ErrTitleNotFound,
			field: FieldTitle,
		},
		{
			name:  "no byline",
			raw:   `<h1>T</h1><div class="field field-name-body">x</div>`,
			want:  ErrAuthorsNotFound,
			field: FieldAuthors,
		},
		{
			name:  "no body",
			raw:   `<h1>T</h1><ul class="byline inline"><li>A</li></ul>`,
			want:  ErrBodyNotFound,
			field: FieldBody,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, err := mustNew(t, tc.raw).Record()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var ee *ExtractionError
			if !errors.As(err, &ee) || ee.Field != tc.field {
				t.Fatalf("expected ExtractionError for %s, got %#v", tc.field, err)
			}
			if diff := cmp.Diff(domain.ArticleRecord{}, rec); diff != "" {
				t.Fatalf("expected no partial record (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEmptyBylineYieldsEmptyAuthors(t *testing.T) {
	authors, err := mustNew(t, `<ul class="byline inline">  </ul>`).Authors()
	if err != nil {
		t.Fatalf("Authors: %v", err)
	}
	if authors == nil || len(authors) != 0 {
		t.Fatalf("expected empty non-nil authors, got %#v", authors)
	}
}

func TestToleratesMalformedMarkup(t *testing.T) {
	raw := `<html><body><h1 data-x=1 unknown>Title</h1>
<ul class="byline inline"><li>A<li>B</ul>
<div class="field field-name-body"><p>One<p>Two`

	rec, err := mustNew(t, raw).Record()
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	want := domain.ArticleRecord{Title: "Title", Authors: []string{"A", "B"}, Body: "One Two"}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractionIsDeterministic(t *testing.T) {
	doc := domain.RawDocument{ID: "551683", Body: []byte(articlePage)}

	first, err := Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	second, err := Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("records differ (-first +second):\n%s", diff)
	}
}

func TestNewRejectsNonMarkup(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "nil", raw: nil},
		{name: "whitespace", raw: []byte(" \n\t ")},
		{name: "png", raw: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")},
		{name: "binary", raw: []byte{0x00, 0x01, 0x02, 0x03, 0xff, 0xfe}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.raw)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestFromDocumentDecodesDeclaredCharset(t *testing.T) {
	// "København" encoded as ISO-8859-1.
	raw := []byte("<html><body><h1>K\xf8benhavn</h1></body></html>")

	ex, err := FromDocument(domain.RawDocument{Body: raw, ContentType: "text/html; charset=ISO-8859-1"})
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	title, err := ex.Title()
	if err != nil {
		t.Fatalf("Title: %v", err)
	}
	if title != "København" {
		t.Fatalf("Title = %q", title)
	}
}

func TestFromDocumentKeepsValidUTF8(t *testing.T) {
	raw := []byte(`<html><body><h1>Æblerne i Århus</h1></body></html>`)

	ex, err := FromDocument(domain.RawDocument{Body: raw, ContentType: "text/html"})
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if title, _ := ex.Title(); title != "Æblerne i Århus" {
		t.Fatalf("Title = %q", title)
	}
}
