package extractor

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Selector is a structural fingerprint: a tag name plus, optionally, an
// exact class attribute value. It satisfies goquery.Matcher.
type Selector struct {
	tag        string
	class      string
	checkClass bool
}

// Element matches every element named tag.
func Element(tag string) Selector {
	return Selector{tag: strings.ToLower(tag)}
}

// ElementWithClass matches tag elements whose class attribute is exactly class.
// "a b" does not match class="a b c" or class="b a".
func ElementWithClass(tag, class string) Selector {
	return Selector{tag: strings.ToLower(tag), class: class, checkClass: true}
}

func (s Selector) String() string {
	if !s.checkClass {
		return s.tag
	}
	return fmt.Sprintf("%s[class=%q]", s.tag, s.class)
}

// Match reports whether n itself satisfies the selector.
func (s Selector) Match(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode || !strings.EqualFold(n.Data, s.tag) {
		return false
	}
	if !s.checkClass {
		return true
	}
	class, ok := attr(n, "class")
	return ok && class == s.class
}

// MatchAll returns n and every descendant of n that matches, in document order.
func (s Selector) MatchAll(n *html.Node) []*html.Node {
	var out []*html.Node
	walk(n, func(cur *html.Node) bool {
		if s.Match(cur) {
			out = append(out, cur)
		}
		return true
	})
	return out
}

// Filter keeps the nodes that match.
func (s Selector) Filter(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if s.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// walk visits n and its descendants depth-first in document order until
// visit returns false. It reports whether the walk ran to completion.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if n == nil {
		return true
	}
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

// textFragments collects the text nodes below n in document order.
// Whitespace-only nodes are skipped; the rest are kept verbatim.
func textFragments(n *html.Node) []string {
	var out []string
	walk(n, func(cur *html.Node) bool {
		if cur.Type == html.TextNode && strings.TrimSpace(cur.Data) != "" {
			out = append(out, cur.Data)
		}
		return true
	})
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
