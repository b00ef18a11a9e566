package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content.
const minContentLength = 50

// extractArticle runs the Mozilla Readability algorithm on rawHTML and returns
// the main-content HTML. ok is false when readability failed or found too
// little text, in which case the caller keeps the input HTML.
func extractArticle(rawHTML string, sourceURL string) (content string, ok bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Warn("readability: invalid source URL, keeping full page",
			"url", sourceURL, "error", err,
		)
		return "", false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Warn("readability: extraction failed, keeping full page",
			"url", sourceURL, "error", err,
		)
		return "", false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Warn("readability: extracted content too short, keeping full page",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return "", false
	}

	return article.Content, true
}
