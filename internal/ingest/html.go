package ingest

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/neurobridge/neurobridge/internal/model"
)

// ParseHTML extracts readable text from an HTML document as pages.
// Each top-level heading (h1, h2) starts a new page so that page numbers
// in retrieval results point back to a recognizable document section.
func ParseHTML(content string) ([]model.Page, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var pages []model.Page
	var current strings.Builder

	flush := func() {
		text := strings.TrimSpace(current.String())
		current.Reset()
		if text == "" {
			return
		}
		pages = append(pages, model.Page{Number: len(pages) + 1, Text: text})
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "nav", "footer":
				return
			case "h1", "h2":
				flush()
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if current.Len() > 0 {
					current.WriteString(" ")
				}
				current.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			current.WriteString("\n")
		}
	}
	walk(doc)
	flush()

	return pages, nil
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "br", "h1", "h2", "h3", "h4", "section", "article", "tr":
		return true
	}
	return false
}
