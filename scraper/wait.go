package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
)

// waitForTimeout bounds the wait for a caller-supplied selector.
const waitForTimeout = 10 * time.Second

// waitForSelector blocks until at least one element matches selector, the
// timeout passes, or ctx is done. A selector that never appears is logged
// and the page is read as-is; only cancellation of ctx is returned.
func waitForSelector(ctx context.Context, page *rod.Page, selector string) error {
	waitCtx, cancel := context.WithTimeout(ctx, waitForTimeout)
	defer cancel()

	if err := page.Context(waitCtx).WaitElementsMoreThan(selector, 0); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		slog.Warn("wait-for selector did not appear, proceeding with current DOM",
			"selector", selector, "timeout", waitForTimeout,
		)
	}
	return nil
}
