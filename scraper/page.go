package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/scrapeai/models"
	"github.com/ysmood/gson"
)

// scrollToBottomJS triggers scroll-driven lazy loading.
const scrollToBottomJS = `() => window.scrollTo(0, document.body ? document.body.scrollHeight : 0)`

// Fetch renders req.URL in a fresh tab and returns the final page source.
//
// Lifecycle:
//
//  1. Open page              – new tab on the session's browser
//  2. DEFER: close page      – released on every exit path
//  3. Emulation              – fixed viewport + client identifier
//  4. Stealth / headers      – must be installed before navigation
//  4b. Request blocking      – optional resource / tracker interception
//  5. Navigate + load        – bounded by NavigationTimeout
//  5b. Wait for selector     – optional, best-effort
//  6. Settle delay           – fixed wait for dynamic content
//  7. Scroll to bottom       – then ScrollDelay for lazy-loaded content
//  8. Extract                – page.HTML() + document.title + location
//
// The fixed delays are a heuristic: a page still loading after them is
// returned as-is.
func (s *Scraper) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	// ── 1. Open page ──────────────────────────────────────────────────
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeFetch,
			"failed to open browser page",
			err,
		)
	}

	// ── 2. Close the tab regardless of outcome ────────────────────────
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Debug("cleanup: failed to close page", "error", closeErr)
		}
	}()

	// ── 3. Emulation ──────────────────────────────────────────────────
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.browserCfg.WindowWidth,
		Height:            s.browserCfg.WindowHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Warn("failed to set viewport, proceeding with browser default", "error", err)
	}
	if s.browserCfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: s.browserCfg.UserAgent,
		}); err != nil {
			slog.Warn("failed to override user agent", "error", err)
		}
	}

	// ── 4. Stealth injection + extra headers ─────────────────────────
	if req.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}
	if len(req.Headers) > 0 {
		if err := (proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(req.Headers),
		}).Call(page); err != nil {
			slog.Warn("failed to set extra headers", "error", err)
		}
	}

	// ── 4b. Request blocking ─────────────────────────────────────────
	if router := installBlocker(page, req.BlockResources, req.BlockAds); router != nil {
		defer func() {
			if stopErr := router.Stop(); stopErr != nil {
				slog.Debug("cleanup: failed to stop request router", "error", stopErr)
			}
		}()
	}

	p := page.Context(ctx)

	// ── 5. Navigate ───────────────────────────────────────────────────
	slog.Info("navigating", "url", req.URL)
	nav := p
	if s.scraperCfg.NavigationTimeout > 0 {
		nav = p.Timeout(s.scraperCfg.NavigationTimeout)
		defer nav.CancelTimeout()
	}
	if err := nav.Navigate(req.URL); err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}
	if err := nav.WaitLoad(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, categorizeError(ctxErr, "interrupted while waiting for page load")
		}
		slog.Debug("load event did not fire in time, proceeding with current DOM", "error", err)
	}

	// ── 5b. Wait for selector ─────────────────────────────────────────
	if req.WaitFor != "" {
		if err := waitForSelector(ctx, p, req.WaitFor); err != nil {
			return nil, categorizeError(err, "interrupted while waiting for selector")
		}
	}

	// ── 6. Settle delay ───────────────────────────────────────────────
	if err := pause(ctx, s.scraperCfg.SettleDelay); err != nil {
		return nil, categorizeError(err, "interrupted while waiting for dynamic content")
	}

	// ── 7. Scroll for lazy content ────────────────────────────────────
	if _, err := p.Eval(scrollToBottomJS); err != nil {
		slog.Warn("scroll to bottom failed, proceeding with current DOM", "error", err)
	}
	if err := pause(ctx, s.scraperCfg.ScrollDelay); err != nil {
		return nil, categorizeError(err, "interrupted while waiting for lazy-loaded content")
	}

	// ── 8. Extract rendered HTML ──────────────────────────────────────
	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to extract page HTML")
	}

	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = req.URL
	}

	slog.Info("page rendered", "url", finalURL, "title", title, "bytes", len(rawHTML))

	return &FetchResult{
		HTML:     rawHTML,
		Title:    title,
		FinalURL: finalURL,
	}, nil
}

// pause blocks for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "fetch canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeFetch, msg, err)
	}
}
