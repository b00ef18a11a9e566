// Package tokens resolves model tokenizers and applies the input ceiling
// before text is submitted to the model.
package tokens

import (
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for model names tiktoken does not know.
const fallbackEncoding = "o200k_base"

// Encoder converts between text and token ids.
type Encoder interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// EncoderFor resolves the encoder of a model.
type EncoderFor func(model string) (Encoder, error)

type tiktokenEncoder struct {
	tke *tiktoken.Tiktoken
}

func (e tiktokenEncoder) Encode(text string) []int {
	return e.tke.Encode(text, nil, nil)
}

func (e tiktokenEncoder) Decode(tokens []int) string {
	return e.tke.Decode(tokens)
}

var (
	mu       sync.RWMutex
	encoders = make(map[string]Encoder)
)

// ForModel returns the tiktoken encoding for model, caching it per model
// name. Unknown model names use o200k_base.
func ForModel(model string) (Encoder, error) {
	mu.RLock()
	enc, ok := encoders[model]
	mu.RUnlock()
	if ok {
		return enc, nil
	}

	tke, err := tiktoken.EncodingForModel(model)
	if err != nil {
		slog.Debug("no encoding registered for model, using fallback",
			"model", model, "encoding", fallbackEncoding,
		)
		tke, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, fmt.Errorf("load %s encoding: %w", fallbackEncoding, err)
		}
	}
	enc = tiktokenEncoder{tke: tke}

	mu.Lock()
	if cached, ok := encoders[model]; ok {
		enc = cached
	} else {
		encoders[model] = enc
	}
	mu.Unlock()

	return enc, nil
}

// Count returns the number of tokens in text.
func Count(enc Encoder, text string) int {
	if text == "" {
		return 0
	}
	return len(enc.Encode(text))
}

// Trim keeps a prefix of text of at most maxTokens tokens. Text at or below
// the ceiling, or a ceiling <= 0, is returned unchanged.
//
// Over the ceiling the result is exactly maxTokens tokens unless the cut
// falls inside a multibyte character; trailing tokens are then dropped until
// the prefix is valid UTF-8 and re-encodes within the ceiling.
func Trim(enc Encoder, text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}
	ids := enc.Encode(text)
	if len(ids) <= maxTokens {
		return text
	}
	slog.Debug("trimming model input", "tokens", len(ids), "max", maxTokens)

	for n := maxTokens; n > 0; n-- {
		out := enc.Decode(ids[:n])
		if utf8.ValidString(out) && Count(enc, out) <= maxTokens {
			return out
		}
	}
	return ""
}
