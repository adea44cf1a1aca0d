package analysis

import (
	"strings"

	"github.com/poiesic/boox/encoder"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// NFKC applies Unicode compatibility composition, folding ligatures,
// full-width forms and similar variants onto their plain equivalents.
func NFKC(input string) string {
	return norm.NFKC.String(input)
}

// StripHTML extracts the visible text of an HTML fragment. Script, style and
// noscript elements are dropped and whitespace runs collapse to one space.
// Input that fails to parse is returned unchanged.
func StripHTML(input string) string {
	if !strings.ContainsAny(input, "<&") {
		return input
	}
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil {
		return input
	}

	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)
	return strings.Join(strings.Fields(text.String()), " ")
}

// Chain composes normalizers left to right. Nil entries are skipped.
func Chain(normalizers ...encoder.NormalizerFunc) encoder.NormalizerFunc {
	return func(input string) string {
		for _, fn := range normalizers {
			if fn != nil {
				input = fn(input)
			}
		}
		return input
	}
}
