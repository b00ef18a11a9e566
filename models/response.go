package models

// CostReport is the token usage and estimated spend of one extraction.
type CostReport struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"`
}

// LLMUsage reports token consumption as returned by the LLM provider.
type LLMUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// NavigationMs is the time spent launching, navigating and rendering.
	NavigationMs int64 `json:"navigation_ms"`

	// CleaningMs is the time spent cleaning and converting to markdown.
	CleaningMs int64 `json:"cleaning_ms"`

	// ExtractionMs is the time spent waiting on the LLM.
	ExtractionMs int64 `json:"extraction_ms"`

	// PersistMs is the time spent writing output files.
	PersistMs int64 `json:"persist_ms"`
}

// Artifacts lists the files written by one run. Empty paths were not written.
type Artifacts struct {
	JSON     string `json:"json"`
	XLSX     string `json:"xlsx,omitempty"`
	CSV      string `json:"csv,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}
