package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelector lists the elements whose text forms the article body.
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre"

// HTMLToText extracts readable text from an HTML document. Script, style
// and noscript content is dropped; block-level elements become paragraphs
// so downstream chunking sees natural boundaries.
func HTMLToText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	doc.Find("script, style, noscript, svg").Remove()

	var paragraphs []string
	doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		// Skip containers whose text is already captured by a nested
		// block element.
		if sel.Find(blockSelector).Length() > 0 {
			return
		}
		text := collapseSpace(sel.Text())
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n\n"), nil
	}

	// No block structure: fall back to the flattened document text.
	return collapseSpace(doc.Text()), nil
}

// HTMLTitle returns the document's <title> text, empty if absent.
func HTMLTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return collapseSpace(doc.Find("title").First().Text())
}

// collapseSpace normalizes all whitespace runs to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
