package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/scrapeai/cleaner"
	"github.com/use-agent/scrapeai/config"
	"github.com/use-agent/scrapeai/llm"
	"github.com/use-agent/scrapeai/models"
	"github.com/use-agent/scrapeai/pipeline"
	"github.com/use-agent/scrapeai/pricing"
	"github.com/use-agent/scrapeai/scraper"
	"github.com/use-agent/scrapeai/tokens"
)

var version = "dev"

// options holds the parsed command-line flags.
type options struct {
	fields       []string
	model        string
	outputDir    string
	maxTokens    int
	selector     string
	extractMode  string
	headers      []string
	waitFor      string
	block        []string
	blockAds     bool
	showUI       bool
	stealth      bool
	saveCSV      bool
	saveMarkdown bool
	timeout      time.Duration
}

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)

	if err := newRootCmd(cfg).Execute(); err != nil {
		var se *models.ScrapeError
		if errors.As(err, &se) {
			d := se.ToDetail()
			fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", d.Code, d.Message)
			slog.Debug("run failed", "error", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "scrapeai [URL]",
		Short:   "Extract structured listings from a web page with an LLM",
		Version: version,
		Long: `scrapeai renders a single page in a headless browser, strips header and
footer boilerplate, converts it to markdown and asks an LLM to extract one
record per listing with the fields you name. Results are written as
sorted_data_{timestamp}.json and .xlsx.`,
		Example: `  # Extract name and price from a listing page
  scrapeai -F name -F price https://shop.example/kettles

  # Narrow the page first and keep the markdown that was sent
  scrapeai -F title -F price -s "#results" --save-markdown shop.example/search?q=kettle

  # List supported models and their prices
  scrapeai models`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfg, opts, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.Flags()
	flags.StringArrayVarP(&opts.fields, "field", "F", []string{"image", "price"}, "Field to extract per record (repeat for several fields)")
	flags.StringVarP(&opts.model, "model", "m", cfg.LLM.Model, "LLM model, see 'scrapeai models'")
	flags.StringVarP(&opts.outputDir, "output", "o", cfg.Output.Dir, "Directory for output files")
	flags.IntVar(&opts.maxTokens, "max-tokens", cfg.LLM.MaxInputTokens, "Maximum input tokens sent to the model")
	flags.StringVarP(&opts.selector, "selector", "s", "", "CSS selector to narrow the page before extraction")
	flags.StringVar(&opts.extractMode, "extract-mode", models.ExtractModeRaw, "Content mode: raw or readability")
	flags.StringArrayVarP(&opts.headers, "header", "H", []string{}, "Extra HTTP header 'Key: Value' (can be used multiple times)")
	flags.StringVarP(&opts.waitFor, "wait-for", "w", "", "CSS selector to wait for after page load")
	flags.StringSliceVar(&opts.block, "block", []string{}, "Resource types not to load: image, stylesheet, font, media")
	flags.BoolVar(&opts.blockAds, "block-ads", false, "Block known ad and tracking hosts")
	flags.BoolVar(&opts.showUI, "showui", false, "Show browser UI (disable headless mode)")
	flags.BoolVar(&opts.stealth, "stealth", false, "Inject anti-bot-detection evasions")
	flags.BoolVar(&opts.saveCSV, "csv", false, "Also write the table as CSV")
	flags.BoolVar(&opts.saveMarkdown, "save-markdown", false, "Also write the page markdown")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 5*time.Minute, "Overall timeout for the run (0 for none)")

	rootCmd.AddCommand(newModelsCmd())
	return rootCmd
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported models and their prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printModels(cmd.OutOrStdout(), pricing.DefaultTable())
		},
	}
}

func run(cmd *cobra.Command, cfg *config.Config, opts *options, target string) error {
	if cfg.LLM.APIKey == "" {
		return models.NewScrapeError(models.ErrCodeInvalidInput, "OPENAI_API_KEY is not set", nil)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	browserCfg := cfg.Browser
	if opts.showUI {
		browserCfg.Headless = false
	}

	runner := &pipeline.Runner{
		Fetcher:    scraper.OneShot{Browser: browserCfg, Scraper: cfg.Scraper},
		Cleaner:    cleaner.NewCleaner(),
		Extractor:  llm.NewClient(cfg.LLM, nil),
		Accountant: pricing.NewAccountant(pricing.DefaultTable(), tokens.ForModel),
		EncoderFor: tokens.ForModel,
	}

	req := &models.ScrapeRequest{
		URL:            normalizeURL(target),
		Fields:         trimFields(opts.fields),
		Model:          opts.model,
		OutputDir:      opts.outputDir,
		MaxInputTokens: opts.maxTokens,
		CSSSelector:    opts.selector,
		ExtractMode:    opts.extractMode,
		Headers:        parseHeaders(opts.headers),
		Stealth:        opts.stealth,
		WaitFor:        opts.waitFor,
		BlockResources: opts.block,
		BlockAds:       opts.blockAds,
		SaveMarkdown:   opts.saveMarkdown,
		SaveCSV:        opts.saveCSV,
	}

	res, err := runner.Run(ctx, req)
	if err != nil {
		return err
	}

	return printResult(cmd.OutOrStdout(), res)
}

// initLogger configures slog based on the LogConfig. Logs go to stderr so
// stdout carries only the result.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseHeaders parses 'Key: Value' header flags. Malformed entries are skipped.
func parseHeaders(headerSlice []string) map[string]string {
	headersMap := make(map[string]string)
	for _, h := range headerSlice {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if key != "" {
				headersMap[key] = value
			}
		}
	}
	return headersMap
}

// normalizeURL adds http:// when the URL has no http, https or file scheme.
func normalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return rawURL
	}
	lower := strings.ToLower(rawURL)
	for _, prefix := range []string{"http://", "https://", "file://"} {
		if strings.HasPrefix(lower, prefix) {
			return rawURL
		}
	}
	return "http://" + rawURL
}

// trimFields strips whitespace around each field name.
func trimFields(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
