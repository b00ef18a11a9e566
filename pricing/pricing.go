// Package pricing estimates the spend of an extraction from token counts and
// a per-model price table.
package pricing

import (
	"fmt"
	"sort"

	"github.com/use-agent/scrapeai/models"
	"github.com/use-agent/scrapeai/tokens"
)

// Rate is the USD price of one token.
type Rate struct {
	Input  float64
	Output float64
}

// Table maps a model identifier to its rates.
type Table map[string]Rate

// perMillion converts a per-1M-token price into a per-token rate.
func perMillion(usd float64) float64 {
	return usd / 1_000_000
}

// DefaultTable returns a fresh copy of the built-in prices.
func DefaultTable() Table {
	return Table{
		"gpt-4o-mini": {
			Input:  perMillion(0.150),
			Output: perMillion(0.600),
		},
		"gpt-4o-2024-08-06": {
			Input:  perMillion(2.50),
			Output: perMillion(10.00),
		},
	}
}

// Models returns the table's model identifiers, sorted.
func (t Table) Models() []string {
	out := make([]string, 0, len(t))
	for m := range t {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the rate of model or an UNKNOWN_MODEL error.
func (t Table) Lookup(model string) (Rate, error) {
	rate, ok := t[model]
	if !ok {
		return Rate{}, models.NewScrapeError(
			models.ErrCodeUnknownModel,
			fmt.Sprintf("model %q has no price entry", model),
			nil,
		)
	}
	return rate, nil
}

// Accountant prices extractions against an injected table.
type Accountant struct {
	table      Table
	encoderFor tokens.EncoderFor
}

// NewAccountant copies table so later changes by the caller are not seen.
func NewAccountant(table Table, encoderFor tokens.EncoderFor) *Accountant {
	own := make(Table, len(table))
	for m, r := range table {
		own[m] = r
	}
	return &Accountant{table: own, encoderFor: encoderFor}
}

// Models lists the models this accountant can price.
func (a *Accountant) Models() []string {
	return a.table.Models()
}

// Rate returns the price entry of model or an UNKNOWN_MODEL error.
func (a *Accountant) Rate(model string) (Rate, error) {
	return a.table.Lookup(model)
}

// Cost counts the tokens of the input and output text with the model's
// encoding and prices them. Models missing from the table fail with
// UNKNOWN_MODEL before any tokenizing happens.
func (a *Accountant) Cost(inputText, outputText, model string) (models.CostReport, error) {
	rate, err := a.table.Lookup(model)
	if err != nil {
		return models.CostReport{}, err
	}

	enc, err := a.encoderFor(model)
	if err != nil {
		return models.CostReport{}, models.NewScrapeError(
			models.ErrCodeInternal,
			"failed to load tokenizer for "+model,
			err,
		)
	}

	in := tokens.Count(enc, inputText)
	out := tokens.Count(enc, outputText)

	return models.CostReport{
		InputTokens:  in,
		OutputTokens: out,
		TotalCost:    float64(in)*rate.Input + float64(out)*rate.Output,
	}, nil
}
