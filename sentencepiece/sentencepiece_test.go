package sentencepiece

import (
	"os"
	"strings"
	"testing"
)

func TestDetokenize(t *testing.T) {
	s := &SubTokenizer{}
	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{"word starts fuse with spaces", []string{"▁Hello", "▁world"}, "Hello world"},
		{"continuations concatenate", []string{"▁Hel", "lo"}, "Hello"},
		{"leading space trimmed", []string{"▁a"}, "a"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Detokenize(tt.tokens); got != tt.want {
				t.Errorf("Detokenize(%v) = %q, want %q", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestContinuationPrefix(t *testing.T) {
	s := &SubTokenizer{}
	if got := s.ContinuationPrefix(); got != "" {
		t.Errorf("ContinuationPrefix() = %q, want empty", got)
	}
}

// TestTokenizeWordWithModel needs a real SentencePiece model proto; point
// SENTENCEPIECE_MODEL at one (e.g. a downloaded "tokenizer.model") to run it.
func TestTokenizeWordWithModel(t *testing.T) {
	modelPath := os.Getenv("SENTENCEPIECE_MODEL")
	if modelPath == "" {
		t.Skip("SENTENCEPIECE_MODEL not set")
	}

	s, err := NewFromPath(modelPath)
	if err != nil {
		t.Fatalf("NewFromPath failed: %v", err)
	}

	inputs := []string{
		"hello",
		"hello world",
		"The quick brown fox jumps over the lazy dog.",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			pieces := s.TokenizeWord(input)
			if len(pieces) == 0 {
				t.Fatalf("TokenizeWord(%q) returned no pieces", input)
			}
			// Detokenizing the pieces must reproduce the input up to leading
			// whitespace handling.
			got := s.Detokenize(pieces)
			if got != strings.TrimLeft(input, " ") {
				t.Errorf("Detokenize(TokenizeWord(%q)) = %q", input, got)
			}
		})
	}
}
