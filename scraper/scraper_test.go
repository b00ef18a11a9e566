package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/use-agent/scrapeai/config"
	"github.com/use-agent/scrapeai/models"
)

func TestPauseHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := pause(ctx, time.Minute)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("pause() error = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("pause did not return promptly after cancellation")
	}
}

func TestPauseZeroDelay(t *testing.T) {
	if err := pause(context.Background(), 0); err != nil {
		t.Fatalf("pause(0) = %v", err)
	}
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"deadline", context.DeadlineExceeded, models.ErrCodeTimeout},
		{"canceled", context.Canceled, models.ErrCodeTimeout},
		{"other", errors.New("net::ERR_NAME_NOT_RESOLVED"), models.ErrCodeFetch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := categorizeError(tt.err, "navigation failed")
			if got.Code != tt.code {
				t.Errorf("code = %q, want %q", got.Code, tt.code)
			}
			if !errors.Is(got, models.ErrFetch) {
				t.Error("expected error to match models.ErrFetch")
			}
		})
	}
}

func TestToHeadersMap(t *testing.T) {
	m := toHeadersMap(map[string]string{"Accept-Language": "en-US"})
	if got := m["Accept-Language"].Str(); got != "en-US" {
		t.Errorf("header = %q, want en-US", got)
	}
}

const fixturePage = `<!DOCTYPE html>
<html><head><title>Fixture Shop</title></head>
<body>
<header>Members only banner</header>
<main><div class="listing"><h2>Acme Kettle</h2><span class="price">$24.99</span></div></main>
<footer>Copyright Fixture Shop</footer>
</body></html>`

// TestFetchRendersPage drives a real browser; it is skipped when none is installed.
func TestFetchRendersPage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no Chromium found on this machine")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(fixturePage))
	}))
	defer srv.Close()

	browserCfg := config.BrowserConfig{
		Headless:     true,
		NoSandbox:    true,
		BrowserBin:   bin,
		UserAgent:    config.DefaultUserAgent,
		WindowWidth:  1280,
		WindowHeight: 800,
	}
	scraperCfg := config.ScraperConfig{
		NavigationTimeout: 30 * time.Second,
		SettleDelay:       10 * time.Millisecond,
		ScrollDelay:       10 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := Fetch(ctx, browserCfg, scraperCfg, &FetchRequest{URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(res.HTML, "Acme Kettle") {
		t.Errorf("rendered HTML missing listing: %q", res.HTML)
	}
	if res.Title != "Fixture Shop" {
		t.Errorf("Title = %q, want Fixture Shop", res.Title)
	}
}
