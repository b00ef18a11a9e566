package models

import (
	"net/url"
	"strings"
)

// Content extraction modes applied before markdown conversion.
const (
	ExtractModeRaw         = "raw"
	ExtractModeReadability = "readability"
)

// ScrapeRequest describes one pipeline invocation.
type ScrapeRequest struct {
	// URL is the target page to render. Required.
	URL string `json:"url"`

	// Fields names the attributes to extract per record. Required.
	Fields []string `json:"fields"`

	// Model selects the LLM and its price table entry.
	// Default: "gpt-4o-mini".
	Model string `json:"model,omitempty"`

	// OutputDir is where the timestamped artifacts are written.
	// Default: "output".
	OutputDir string `json:"output_dir,omitempty"`

	// MaxInputTokens caps the markdown sent to the model. Text beyond the
	// cap is dropped before submission. Default: 200000.
	MaxInputTokens int `json:"max_input_tokens,omitempty"`

	// CSSSelector optionally narrows the cleaned HTML before conversion.
	CSSSelector string `json:"css_selector,omitempty"`

	// ExtractMode is "raw" (default) or "readability".
	ExtractMode string `json:"extract_mode,omitempty"`

	// Headers are extra HTTP headers sent with the navigation.
	Headers map[string]string `json:"headers,omitempty"`

	// Stealth injects anti-bot-detection evasions before navigation.
	Stealth bool `json:"stealth,omitempty"`

	// WaitFor is a CSS selector to await after load, best-effort.
	WaitFor string `json:"wait_for,omitempty"`

	// BlockResources lists resource types the browser should not load.
	BlockResources []string `json:"block_resources,omitempty"`

	// BlockAds drops requests to known ad and tracking hosts.
	BlockAds bool `json:"block_ads,omitempty"`

	// SaveMarkdown additionally writes the converted page text.
	SaveMarkdown bool `json:"save_markdown,omitempty"`

	// SaveCSV additionally writes the tabular view as CSV.
	SaveCSV bool `json:"save_csv,omitempty"`
}

// DefaultMaxInputTokens is the trimming ceiling used when none is configured.
const DefaultMaxInputTokens = 200000

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Model == "" {
		r.Model = "gpt-4o-mini"
	}
	if r.OutputDir == "" {
		r.OutputDir = "output"
	}
	if r.MaxInputTokens == 0 {
		r.MaxInputTokens = DefaultMaxInputTokens
	}
	if r.ExtractMode == "" {
		r.ExtractMode = ExtractModeRaw
	}
}

// Validate checks the request for values the pipeline cannot run with.
// Field names are validated by the schema builder.
func (r *ScrapeRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return NewScrapeError(ErrCodeInvalidInput, "url is required", nil)
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return NewScrapeError(ErrCodeInvalidInput, "url is not valid", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file" {
		return NewScrapeError(ErrCodeInvalidInput, "url scheme must be http, https or file", nil)
	}
	if len(r.Fields) == 0 {
		return NewScrapeError(ErrCodeInvalidInput, "at least one field is required", nil)
	}
	if r.MaxInputTokens < 0 {
		return NewScrapeError(ErrCodeInvalidInput, "max input tokens must not be negative", nil)
	}
	switch r.ExtractMode {
	case ExtractModeRaw, ExtractModeReadability:
	default:
		return NewScrapeError(ErrCodeInvalidInput, "extract mode must be raw or readability", nil)
	}
	return nil
}
