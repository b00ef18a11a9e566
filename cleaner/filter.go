package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplateSelector matches the page chrome stripped before conversion.
const boilerplateSelector = "header, footer"

// Clean removes every header and footer element, subtree included.
// Input without such elements, or input that cannot be parsed, is
// returned unchanged.
func Clean(rawHTML string) string {
	return RemoveElements(rawHTML, boilerplateSelector)
}

// RemoveElements deletes all elements matching any of the CSS selectors and
// returns the re-serialized document. If nothing matches, the input is
// returned as-is so callers never pay for a needless round-trip.
func RemoveElements(rawHTML string, selectors ...string) string {
	if len(selectors) == 0 {
		return rawHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	matches := doc.Find(strings.Join(selectors, ", "))
	if matches.Length() == 0 {
		return rawHTML
	}
	matches.Remove()

	result, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return result
}
