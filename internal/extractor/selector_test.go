package extractor

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func parseFragment(t *testing.T, raw string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("html.Parse: %v", err)
	}
	return root
}

func TestSelectorString(t *testing.T) {
	if got := TitleSelector.String(); got != "h1" {
		t.Fatalf("TitleSelector = %s", got)
	}
	if got := BylineSelector.String(); got != `ul[class="byline inline"]` {
		t.Fatalf("BylineSelector = %s", got)
	}
}

func TestMatchAllReturnsDocumentOrder(t *testing.T) {
	root := parseFragment(t, `<div class="c"><p>1</p><div class="c"><p>2</p></div></div><div class="c">3</div>`)

	matches := ElementWithClass("DIV", "c").MatchAll(root)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	var got []string
	for _, m := range matches {
		got = append(got, strings.Join(textFragments(m), ""))
	}
	if strings.Join(got, "|") != "12|2|3" {
		t.Fatalf("unexpected match order %v", got)
	}
}

func TestFilterKeepsMatchingNodes(t *testing.T) {
	root := parseFragment(t, `<h1>a</h1><h2>b</h2>`)
	all := Element("h2").MatchAll(root)
	all = append(all, Element("h1").MatchAll(root)...)

	kept := Element("h1").Filter(all)
	if len(kept) != 1 || kept[0].Data != "h1" {
		t.Fatalf("unexpected filter result %#v", kept)
	}
}

func TestTextFragmentsSkipsCommentsAndWhitespace(t *testing.T) {
	root := parseFragment(t, "<p>\n  one <!-- hidden --> <b>two</b>\n</p>")
	got := textFragments(root)
	if len(got) != 2 || got[0] != "\n  one " || got[1] != "two" {
		t.Fatalf("unexpected fragments %q", got)
	}
}
