package cleaner

import (
	"bytes"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/scrapeai/models"
	"golang.org/x/net/html"
)

// ApplyCSSSelector keeps only the elements matching selector and returns
// their concatenated outer HTML.
//
// If no elements match, the original rawHTML is returned unchanged so that
// the model still sees the whole page.
func ApplyCSSSelector(rawHTML string, selector string) (string, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeInvalidInput, "invalid CSS selector "+selector, err)
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML, nil
	}

	matches := cascadia.QueryAll(doc, sel)
	if len(matches) == 0 {
		return rawHTML, nil
	}

	var buf bytes.Buffer
	for _, node := range matches {
		if err := html.Render(&buf, node); err != nil {
			return "", models.NewScrapeError(models.ErrCodeContentExtraction, "failed to render selected HTML", err)
		}
		buf.WriteByte('\n')
	}

	return buf.String(), nil
}
