package cleaner

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/use-agent/scrapeai/models"
)

// Cleaner turns rendered HTML into the markdown text handed to the model:
//
//	Stage 1 (clean):    strip header/footer subtrees
//	Stage 1b (filter):  optional CSS selector and readability narrowing
//	Stage 2 (markdown): convert to markdown with inline links
//
// The converter is created once and reused (goroutine-safe).
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured Markdown converter.
func NewCleaner() *Cleaner {
	return &Cleaner{
		mdConverter: newMarkdownConverter(),
	}
}

// Options carries optional content-narrowing parameters.
type Options struct {
	// CSSSelector keeps only matching elements when set.
	CSSSelector string

	// ExtractMode is models.ExtractModeRaw (default) or
	// models.ExtractModeReadability.
	ExtractMode string
}

// ToText cleans rawHTML and converts it to markdown. The output is
// deterministic for identical input.
func (c *Cleaner) ToText(rawHTML string, sourceURL string, opts ...Options) (string, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	html := Clean(rawHTML)

	if o.CSSSelector != "" {
		selected, err := ApplyCSSSelector(html, o.CSSSelector)
		if err != nil {
			return "", err
		}
		html = selected
	}

	if o.ExtractMode == models.ExtractModeReadability {
		if content, ok := extractArticle(html, sourceURL); ok {
			html = content
		}
	}

	markdown, err := ToMarkdown(c.mdConverter, html, sourceURL)
	if err != nil {
		return "", models.NewScrapeError(
			models.ErrCodeContentExtraction,
			"markdown conversion failed",
			err,
		)
	}
	return markdown, nil
}
