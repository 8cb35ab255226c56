package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// NormalizeText decodes HTML entities left in scraped posts (&amp;, &#39;)
// and collapses runs of whitespace
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(html.UnescapeString(text)), " ")
}
