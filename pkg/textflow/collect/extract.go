// Package collect gathers raw text for the collection stage from web pages.
package collect

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// MinWords is the shortest segment ExtractParagraphs keeps, exclusive:
// segments need more than MinWords words.
const MinWords = 3

// ExtractParagraphs returns the text of every <p> element. When a page has
// no non-empty <p>, it falls back to <div> elements. Segments with MinWords
// words or fewer are dropped. Whitespace inside a segment is collapsed to
// single spaces; script and style content is ignored.
func ExtractParagraphs(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	texts := elementTexts(doc, "p")
	if len(texts) == 0 {
		texts = elementTexts(doc, "div")
	}
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if len(strings.Fields(t)) > MinWords {
			out = append(out, t)
		}
	}
	return out, nil
}

func elementTexts(doc *html.Node, tag string) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			if t := nodeText(n); t != "" {
				out = append(out, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func nodeText(n *html.Node) string {
	var parts []string
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			parts = append(parts, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(n)
	return strings.Join(parts, " ")
}
