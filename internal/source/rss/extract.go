package rss

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// articleSelectors are tried in order; the first non-empty match wins.
var articleSelectors = []string{"article", "main", "div.content", "div.post-content", "body"}

// extractMainText pulls the readable article text out of an HTML page.
func extractMainText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header").Remove()

	for _, selector := range articleSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		if text := collapseWhitespace(sel.First().Text()); text != "" {
			return text, nil
		}
	}
	return "", nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
