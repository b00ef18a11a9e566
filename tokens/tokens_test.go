package tokens

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// wordEncoder maps each whitespace-separated word to one token; a test
// stand-in that needs no downloaded vocabulary.
type wordEncoder struct {
	vocab map[string]int
	words []string
}

func newWordEncoder() *wordEncoder {
	return &wordEncoder{vocab: make(map[string]int)}
}

func (w *wordEncoder) Encode(text string) []int {
	var ids []int
	for _, word := range strings.Fields(text) {
		id, ok := w.vocab[word]
		if !ok {
			id = len(w.words)
			w.vocab[word] = id
			w.words = append(w.words, word)
		}
		ids = append(ids, id)
	}
	return ids
}

func (w *wordEncoder) Decode(ids []int) string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = w.words[id]
	}
	return strings.Join(out, " ")
}

func TestTrim_OverCeilingKeepsExactlyMax(t *testing.T) {
	enc := newWordEncoder()
	text := "one two three four five six seven"

	got := Trim(enc, text, 4)

	if got != "one two three four" {
		t.Errorf("Trim() = %q", got)
	}
	if n := Count(enc, got); n != 4 {
		t.Errorf("trimmed token count = %d, want 4", n)
	}
}

func TestTrim_AtOrBelowCeilingIsIdentity(t *testing.T) {
	enc := newWordEncoder()
	text := "one  two\tthree"

	for _, ceiling := range []int{3, 4, 200000} {
		if got := Trim(enc, text, ceiling); got != text {
			t.Errorf("Trim(max=%d) = %q, want input unchanged", ceiling, got)
		}
	}
}

func TestTrim_NonPositiveCeilingDisables(t *testing.T) {
	enc := newWordEncoder()
	text := "a b c"
	if got := Trim(enc, text, 0); got != text {
		t.Errorf("Trim(max=0) = %q", got)
	}
}

func TestCount_Empty(t *testing.T) {
	if n := Count(newWordEncoder(), ""); n != 0 {
		t.Errorf("Count(\"\") = %d", n)
	}
}

func TestForModel_CachedInstance(t *testing.T) {
	sentinel := newWordEncoder()

	mu.Lock()
	encoders["test-cached-model"] = sentinel
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		delete(encoders, "test-cached-model")
		mu.Unlock()
	})

	enc, err := ForModel("test-cached-model")
	if err != nil {
		t.Fatalf("ForModel() error = %v", err)
	}
	if enc != Encoder(sentinel) {
		t.Error("ForModel did not return the cached encoder")
	}
}

// byteEncoder yields one token per byte, like the byte-level fallback of a
// BPE vocabulary.
type byteEncoder struct{}

func (byteEncoder) Encode(text string) []int {
	ids := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
	}
	return ids
}

func (byteEncoder) Decode(ids []int) string {
	b := make([]byte, len(ids))
	for i, id := range ids {
		b[i] = byte(id)
	}
	return string(b)
}

func TestTrim_DoesNotSplitMultibyteCharacters(t *testing.T) {
	enc := byteEncoder{}
	text := strings.Repeat("価格", 10)

	tests := []struct {
		ceiling int
		want    string
	}{
		{4, "価"},
		{6, "価格"},
		{7, "価格"},
		{2, ""},
	}
	for _, tt := range tests {
		got := Trim(enc, text, tt.ceiling)
		if !utf8.ValidString(got) {
			t.Errorf("Trim(max=%d) = %q, not valid UTF-8", tt.ceiling, got)
		}
		if n := Count(enc, got); n > tt.ceiling {
			t.Errorf("Trim(max=%d) re-encodes to %d tokens", tt.ceiling, n)
		}
		if got != tt.want {
			t.Errorf("Trim(max=%d) = %q, want %q", tt.ceiling, got, tt.want)
		}
	}
}

func TestTrim_ExactCeilingOnCharacterBoundary(t *testing.T) {
	enc := byteEncoder{}
	got := Trim(enc, "price 9.99 USD", 5)
	if got != "price" || Count(enc, got) != 5 {
		t.Errorf("Trim() = %q, want exactly 5 tokens", got)
	}
}
