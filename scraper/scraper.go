package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/use-agent/scrapeai/config"
	"github.com/use-agent/scrapeai/models"
)

// Scraper owns one browser process for the duration of a fetch.
// Create it with NewScraper and always release it with Close.
type Scraper struct {
	launcher   *launcher.Launcher
	browser    *rod.Browser
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	closeOnce  sync.Once
}

// NewScraper launches an isolated browser configured to look like a desktop
// client. If the browser starts but the connection fails, the process is
// killed before returning.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) (*Scraper, error) {
	l := newLauncher(browserCfg)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeFetch,
			"failed to launch browser",
			err,
		)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, models.NewScrapeError(
			models.ErrCodeFetch,
			"failed to connect to browser",
			err,
		)
	}

	return &Scraper{
		launcher:   l,
		browser:    browser,
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
	}, nil
}

// newLauncher builds the launcher with the desktop-client flags.
func newLauncher(cfg config.BrowserConfig) *launcher.Launcher {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Leakless(true)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}
	if cfg.DefaultProxy != "" {
		l = l.Proxy(cfg.DefaultProxy)
	}

	l.Set(flags.Flag("disable-gpu"))
	l.Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	if cfg.UserAgent != "" {
		l.Set(flags.Flag("user-agent"), cfg.UserAgent)
	}

	// ── Automation masking ───────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	return l
}

// Close disconnects from the browser and kills its process tree.
// It is safe to call Close more than once.
func (s *Scraper) Close() {
	s.closeOnce.Do(func() {
		slog.Debug("scraper shutting down: closing browser")
		if err := s.browser.Close(); err != nil {
			slog.Warn("failed to close browser cleanly, killing process", "error", err)
		}
		s.launcher.Kill()
		s.launcher.Cleanup()
		slog.Debug("scraper shutdown complete")
	})
}

// Fetch launches a browser, renders req.URL and tears the browser down again
// on every exit path.
func Fetch(ctx context.Context, browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, req *FetchRequest) (*FetchResult, error) {
	s, err := NewScraper(browserCfg, scraperCfg)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return s.Fetch(ctx, req)
}

// OneShot fetches each request with its own short-lived browser.
type OneShot struct {
	Browser config.BrowserConfig
	Scraper config.ScraperConfig
}

// Fetch implements the pipeline fetcher contract.
func (o OneShot) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	return Fetch(ctx, o.Browser, o.Scraper, req)
}
