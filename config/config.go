package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Browser BrowserConfig
	Scraper ScraperConfig
	LLM     LLMConfig
	Output  OutputConfig
	Log     LogConfig
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for all navigation.
	DefaultProxy string

	// UserAgent is the desktop client identifier the browser presents.
	UserAgent string

	// WindowWidth and WindowHeight fix the viewport size.
	WindowWidth  int // default: 1920
	WindowHeight int // default: 1080
}

// ScraperConfig controls page loading.
type ScraperConfig struct {
	// NavigationTimeout is the max time for navigation and the load event.
	NavigationTimeout time.Duration // default: 60s

	// SettleDelay is the unconditional wait after navigation.
	SettleDelay time.Duration // default: 5s

	// ScrollDelay is the wait after scrolling to the bottom of the page.
	ScrollDelay time.Duration // default: 3s
}

// LLMConfig controls the structured extraction backend.
type LLMConfig struct {
	// APIKey is the credential for the OpenAI-compatible API.
	APIKey string

	// BaseURL overrides the API endpoint. Empty means the SDK default.
	BaseURL string

	// Model is the default model when the CLI does not select one.
	Model string // default: "gpt-4o-mini"

	// Temperature is the decoding temperature.
	Temperature float64 // default: 0.1

	// MaxInputTokens caps the page text submitted to the model.
	MaxInputTokens int // default: 200000
}

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Dir string // default: "output"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// DefaultUserAgent is presented by the browser unless overridden.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Load reads a .env file from the working directory (if present) and then
// builds the configuration from environment variables with sane defaults.
// Variables already set in the process environment win over .env entries.
func Load() *Config {
	loadDotEnv()
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:     envBoolOr("SCRAPEAI_HEADLESS", true),
			NoSandbox:    envBoolOr("SCRAPEAI_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("SCRAPEAI_BROWSER_BIN"),
			DefaultProxy: os.Getenv("SCRAPEAI_PROXY"),
			UserAgent:    envOr("SCRAPEAI_USER_AGENT", DefaultUserAgent),
			WindowWidth:  envIntOr("SCRAPEAI_WINDOW_WIDTH", 1920),
			WindowHeight: envIntOr("SCRAPEAI_WINDOW_HEIGHT", 1080),
		},
		Scraper: ScraperConfig{
			NavigationTimeout: envDurationOr("SCRAPEAI_NAV_TIMEOUT", 60*time.Second),
			SettleDelay:       envDurationOr("SCRAPEAI_SETTLE_DELAY", 5*time.Second),
			ScrollDelay:       envDurationOr("SCRAPEAI_SCROLL_DELAY", 3*time.Second),
		},
		LLM: LLMConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			BaseURL:        os.Getenv("SCRAPEAI_LLM_BASE_URL"),
			Model:          envOr("SCRAPEAI_MODEL", "gpt-4o-mini"),
			Temperature:    envFloatOr("SCRAPEAI_TEMPERATURE", 0.1),
			MaxInputTokens: envIntOr("SCRAPEAI_MAX_INPUT_TOKENS", 200000),
		},
		Output: OutputConfig{
			Dir: envOr("SCRAPEAI_OUTPUT_DIR", "output"),
		},
		Log: LogConfig{
			Level:  envOr("SCRAPEAI_LOG_LEVEL", "info"),
			Format: envOr("SCRAPEAI_LOG_FORMAT", "text"),
		},
	}
}

// loadDotEnv populates the environment from .env. A missing file is normal.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file, using process environment only", "error", err)
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
