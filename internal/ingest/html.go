package ingest

import (
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
)

// blockElements end a paragraph in rendered text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "blockquote": true,
	"pre": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "tr": true, "hr": true,
}

// RenderHTML converts a selftext_html value into plain text. The value may be
// entity-escaped once, as in Reddit dumps; paragraphs are separated by a blank line.
func RenderHTML(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	markup := raw
	if strings.Contains(markup, "&lt;") && !strings.Contains(markup, "<") {
		markup = html.UnescapeString(markup)
	}

	doc, err := nethtml.Parse(strings.NewReader(markup))
	if err != nil {
		return strings.TrimSpace(markup)
	}

	var paragraphs []string
	var current strings.Builder

	flush := func() {
		text := strings.Join(strings.Fields(current.String()), " ")
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
		current.Reset()
	}

	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == nethtml.TextNode {
			current.WriteString(n.Data)
			current.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == nethtml.ElementNode && blockElements[n.Data] {
			flush()
		}
	}

	walk(doc)
	flush()

	return strings.Join(paragraphs, "\n\n")
}
