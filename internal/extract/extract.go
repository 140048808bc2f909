package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// RawRow holds the positional string fields pulled out of one source row.
// Any field may be empty; deciding whether a field is usable is the
// normalizer's job, not the extractor's.
type RawRow struct {
	Water    string
	County   string
	Species  string
	Quantity string
	Length   string
	Date     string
}

// Extractor turns one source's raw HTML (or plain text) into raw rows.
// Extractors are total: malformed input yields fewer rows, never an error.
type Extractor interface {
	Extract(raw string) []RawRow
}

var whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)

// collapseSpace trims a string and collapses interior whitespace runs
// (including non-breaking spaces) to a single space.
func collapseSpace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Tags whose boundaries become line breaks when rendering a document to
// plain text.
var lineBreakTags = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true,
	"table": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true,
}

// textLines renders a document to plain text and returns its non-empty
// trimmed lines. Script and style blocks are removed, block-level element
// boundaries become line breaks, remaining markup is stripped, and blank
// runs collapse away. Plain-text input passes through on its own newlines.
func textLines(raw string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil
	}
	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		isBreak := n.Type == html.ElementNode && lineBreakTags[n.Data]
		if isBreak {
			b.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if isBreak {
			b.WriteByte('\n')
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	var lines []string
	for _, ln := range strings.Split(b.String(), "\n") {
		if ln = collapseSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}
