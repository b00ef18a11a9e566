// Package pipeline wires fetch, clean, extract, pricing and persistence into
// one synchronous run.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/use-agent/scrapeai/cleaner"
	"github.com/use-agent/scrapeai/llm"
	"github.com/use-agent/scrapeai/models"
	"github.com/use-agent/scrapeai/output"
	"github.com/use-agent/scrapeai/pricing"
	"github.com/use-agent/scrapeai/schema"
	"github.com/use-agent/scrapeai/scraper"
	"github.com/use-agent/scrapeai/tokens"
)

// Fetcher renders a page. scraper.OneShot is the production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, req *scraper.FetchRequest) (*scraper.FetchResult, error)
}

// Extractor turns page text into a container. *llm.Client implements it.
type Extractor interface {
	Extract(ctx context.Context, text string, cs *schema.ContainerSchema, model string) (*llm.ExtractResult, error)
}

// Runner executes scrape requests.
type Runner struct {
	Fetcher    Fetcher
	Cleaner    *cleaner.Cleaner
	Extractor  Extractor
	Accountant *pricing.Accountant
	EncoderFor tokens.EncoderFor

	// Now stamps artifacts; time.Now when nil.
	Now func() time.Time
}

// Result is the outcome of a successful run. Table is nil when the
// spreadsheet could not be produced.
type Result struct {
	Container *schema.Container
	Table     *output.Table
	Markdown  string
	Title     string
	FinalURL  string
	Cost      models.CostReport
	Usage     *models.LLMUsage
	Timestamp string
	Files     models.Artifacts
	Timing    models.TimingInfo
}

// Run executes one request.
//
// Flow:
//  1. Defaults, validation, price lookup and schema construction.
//  2. Fetch → rendered HTML.
//  3. Clean + convert → markdown.
//  4. Trim to the token ceiling and extract.
//  5. Price the call.
//  6. Persist JSON + XLSX (and optional markdown / CSV).
//
// Any failure before step 6 returns without writing files.
func (r *Runner) Run(ctx context.Context, req *models.ScrapeRequest) (*Result, error) {
	totalStart := time.Now()
	now := r.Now
	if now == nil {
		now = time.Now
	}
	ts := output.Timestamp(now())

	// ── 1. Validate ─────────────────────────────────────────────────
	req.Defaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := r.Accountant.Rate(req.Model); err != nil {
		return nil, err
	}
	record, err := schema.BuildRecordSchema(req.Fields)
	if err != nil {
		return nil, err
	}
	container := schema.BuildContainerSchema(record)

	var timing models.TimingInfo

	// ── 2. Fetch ────────────────────────────────────────────────────
	navStart := time.Now()
	page, err := r.Fetcher.Fetch(ctx, &scraper.FetchRequest{
		URL:            req.URL,
		Headers:        req.Headers,
		Stealth:        req.Stealth,
		WaitFor:        req.WaitFor,
		BlockResources: req.BlockResources,
		BlockAds:       req.BlockAds,
	})
	timing.NavigationMs = time.Since(navStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	// ── 3. Clean + convert ──────────────────────────────────────────
	cleanStart := time.Now()
	markdown, err := r.Cleaner.ToText(page.HTML, page.FinalURL, cleaner.Options{
		CSSSelector: req.CSSSelector,
		ExtractMode: req.ExtractMode,
	})
	timing.CleaningMs = time.Since(cleanStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	// ── 4. Trim + extract ───────────────────────────────────────────
	enc, err := r.EncoderFor(req.Model)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to load tokenizer", err)
	}
	input := tokens.Trim(enc, markdown, req.MaxInputTokens)

	extractStart := time.Now()
	extracted, err := r.Extractor.Extract(ctx, input, container, req.Model)
	timing.ExtractionMs = time.Since(extractStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	// ── 5. Cost ─────────────────────────────────────────────────────
	outputJSON, err := json.Marshal(extracted.Container)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to encode extracted data", err)
	}
	cost, err := r.Accountant.Cost(input, string(outputJSON), req.Model)
	if err != nil {
		return nil, err
	}

	// ── 6. Persist ──────────────────────────────────────────────────
	persistStart := time.Now()
	table, err := output.Save(extracted.Container, ts, req.OutputDir)
	if err != nil {
		return nil, err
	}
	files := models.Artifacts{JSON: output.Path(req.OutputDir, ts, "json")}
	if table != nil {
		files.XLSX = output.Path(req.OutputDir, ts, "xlsx")
	}

	if req.SaveMarkdown {
		if path, err := output.SaveMarkdown(markdown, ts, req.OutputDir); err != nil {
			slog.Warn("failed to save markdown", "error", err)
		} else {
			files.Markdown = path
		}
	}
	if req.SaveCSV && table != nil {
		if path, err := output.SaveCSV(table, ts, req.OutputDir); err != nil {
			slog.Warn("failed to save csv", "error", err)
		} else {
			files.CSV = path
		}
	}
	timing.PersistMs = time.Since(persistStart).Milliseconds()
	timing.TotalMs = time.Since(totalStart).Milliseconds()

	slog.Info("scrape complete",
		"url", page.FinalURL,
		"records", len(extracted.Container.Listings),
		"input_tokens", cost.InputTokens,
		"output_tokens", cost.OutputTokens,
		"total_ms", timing.TotalMs,
	)

	return &Result{
		Container: extracted.Container,
		Table:     table,
		Markdown:  markdown,
		Title:     page.Title,
		FinalURL:  page.FinalURL,
		Cost:      cost,
		Usage:     extracted.Usage,
		Timestamp: ts,
		Files:     files,
		Timing:    timing,
	}, nil
}
