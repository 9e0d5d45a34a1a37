package wiki

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockElements end a line of text when flattened.
const blockElements = "p, div, li, dd, dt, tr, br, h1, h2, h3, h4, h5, h6, blockquote, pre, table, ul, ol, dl"

// StripHTML removes markup from an extract, decodes entities and collapses
// whitespace. Block elements become line breaks; blank lines are dropped.
func StripHTML(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		// The HTML parser only fails on reader errors.
		return collapseWhitespace(s)
	}

	doc.Find("script, style").Remove()
	doc.Find(blockElements).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if f := strings.Fields(line); len(f) > 0 {
			out = append(out, strings.Join(f, " "))
		}
	}
	return strings.Join(out, "\n")
}
