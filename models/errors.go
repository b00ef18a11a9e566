package models

import (
	"errors"
	"fmt"
)

// Error codes used across the pipeline.
const (
	ErrCodeTimeout           = "SCRAPE_TIMEOUT"
	ErrCodeFetch             = "FETCH_FAILED"
	ErrCodeContentExtraction = "CONTENT_EXTRACTION_FAILED"
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeInternal          = "INTERNAL_ERROR"

	// LLM-related error codes.
	ErrCodeExtraction     = "EXTRACTION_FAILED"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"

	// Cost accounting and persistence.
	ErrCodeUnknownModel = "UNKNOWN_MODEL"
	ErrCodeShape        = "SHAPE_INVALID"
)

// Sentinels for errors.Is matching on error categories. A ScrapeError
// matches the sentinel of its category regardless of the wrapped cause.
var (
	ErrFetch        = errors.New("fetch failed")
	ErrExtraction   = errors.New("extraction failed")
	ErrUnknownModel = errors.New("unknown model")
	ErrShape        = errors.New("unsupported data shape")
)

// ErrorDetail is the structured error printed by the CLI.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the category sentinel for e.Code.
func (e *ScrapeError) Is(target error) bool {
	switch target {
	case ErrFetch:
		return e.Code == ErrCodeFetch || e.Code == ErrCodeTimeout
	case ErrExtraction:
		return e.Code == ErrCodeExtraction ||
			e.Code == ErrCodeLLMAuthFailure ||
			e.Code == ErrCodeLLMRateLimited
	case ErrUnknownModel:
		return e.Code == ErrCodeUnknownModel
	case ErrShape:
		return e.Code == ErrCodeShape
	}
	return false
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an ErrorDetail.
func (e *ScrapeError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// CodeOf returns the code of the first ScrapeError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) string {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}
