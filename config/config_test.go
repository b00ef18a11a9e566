package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"SCRAPEAI_HEADLESS", "SCRAPEAI_SETTLE_DELAY", "SCRAPEAI_SCROLL_DELAY",
		"SCRAPEAI_MODEL", "SCRAPEAI_TEMPERATURE", "SCRAPEAI_MAX_INPUT_TOKENS",
		"SCRAPEAI_OUTPUT_DIR", "SCRAPEAI_USER_AGENT", "SCRAPEAI_WINDOW_WIDTH",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	if !cfg.Browser.Headless {
		t.Error("Headless should default to true")
	}
	if cfg.Browser.WindowWidth != 1920 || cfg.Browser.WindowHeight != 1080 {
		t.Errorf("window = %dx%d, want 1920x1080", cfg.Browser.WindowWidth, cfg.Browser.WindowHeight)
	}
	if cfg.Browser.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.Browser.UserAgent)
	}
	if cfg.Scraper.SettleDelay != 5*time.Second || cfg.Scraper.ScrollDelay != 3*time.Second {
		t.Errorf("delays = %v/%v, want 5s/3s", cfg.Scraper.SettleDelay, cfg.Scraper.ScrollDelay)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.1 {
		t.Errorf("Temperature = %v, want 0.1", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxInputTokens != 200000 {
		t.Errorf("MaxInputTokens = %d, want 200000", cfg.LLM.MaxInputTokens)
	}
	if cfg.Output.Dir != "output" {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("SCRAPEAI_HEADLESS", "false")
	t.Setenv("SCRAPEAI_SETTLE_DELAY", "250ms")
	t.Setenv("SCRAPEAI_MAX_INPUT_TOKENS", "4096")
	t.Setenv("SCRAPEAI_TEMPERATURE", "0")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := FromEnv()

	if cfg.Browser.Headless {
		t.Error("Headless should be false")
	}
	if cfg.Scraper.SettleDelay != 250*time.Millisecond {
		t.Errorf("SettleDelay = %v", cfg.Scraper.SettleDelay)
	}
	if cfg.LLM.MaxInputTokens != 4096 {
		t.Errorf("MaxInputTokens = %d", cfg.LLM.MaxInputTokens)
	}
	if cfg.LLM.Temperature != 0 {
		t.Errorf("Temperature = %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.LLM.APIKey)
	}
}

func TestFromEnvIgnoresMalformed(t *testing.T) {
	t.Setenv("SCRAPEAI_WINDOW_WIDTH", "wide")
	t.Setenv("SCRAPEAI_SCROLL_DELAY", "soon")

	cfg := FromEnv()

	if cfg.Browser.WindowWidth != 1920 {
		t.Errorf("WindowWidth = %d, want fallback 1920", cfg.Browser.WindowWidth)
	}
	if cfg.Scraper.ScrollDelay != 3*time.Second {
		t.Errorf("ScrollDelay = %v, want fallback 3s", cfg.Scraper.ScrollDelay)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SCRAPEAI_OUTPUT_DIR=from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	// Registered so the value loaded from .env is removed after the test.
	t.Setenv("SCRAPEAI_OUTPUT_DIR", "")
	os.Unsetenv("SCRAPEAI_OUTPUT_DIR")

	cfg := Load()

	if cfg.Output.Dir != "from-dotenv" {
		t.Errorf("Output.Dir = %q, want from-dotenv", cfg.Output.Dir)
	}
}
