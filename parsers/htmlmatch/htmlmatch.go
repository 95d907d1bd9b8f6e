// The htmlmatch package evaluates small declarative matchers over a parsed
// HTML tree. Site adapters keep their structural knowledge as Matcher
// values (tag name + attribute equalities + optional text predicate)
// instead of inline tree walks, so the page shape each adapter expects
// stays visible and testable against fixture documents.

package htmlmatch

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Matcher selects elements by tag, attribute equality and, when set, a
// predicate on the element's inner text. Empty fields match anything.
type Matcher struct {
	Tag   string
	Attrs map[string]string
	Text  func(string) bool
}

// Match reports whether the node satisfies the matcher.
func (m Matcher) Match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if m.Tag != "" && n.Data != m.Tag {
		return false
	}
	for k, v := range m.Attrs {
		if Attr(n, k) != v {
			return false
		}
	}
	if m.Text != nil && !m.Text(InnerText(n)) {
		return false
	}
	return true
}

// Parse builds the document tree. The stdlib tokenizer is forgiving, which
// suits pages that were never valid HTML to begin with.
func Parse(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// ParseString is Parse over a string.
func ParseString(s string) (*html.Node, error) {
	return html.Parse(strings.NewReader(s))
}

// Find returns the first matching node in depth-first document order, or
// nil. Document order makes repeated extraction deterministic.
func Find(n *html.Node, m Matcher) *html.Node {
	if m.Match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := Find(c, m); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every matching node in depth-first document order.
// Matching nodes nested inside a match are reported too.
func FindAll(n *html.Node, m Matcher) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if m.Match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Children returns the direct element children of n satisfying the
// matcher, in document order.
func Children(n *html.Node, m Matcher) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

// Attr returns the value of the named attribute, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// InnerText concatenates the text nodes under n, whitespace collapsed.
// A separating space is kept between text nodes so that adjacent cells
// don't fuse into one word.
func InnerText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
