package tokenizer

import "strings"

// SubTokenizer is the pluggable sub-word scheme (WordPiece, BPE,
// SentencePiece, ...) that the pipeline delegates plain text fragments to.
// No-split and special tokens never reach it.
type SubTokenizer interface {
	// TokenizeWord splits a text fragment into sub-word tokens.
	TokenizeWord(text string) []string

	// Detokenize joins sub-word tokens back into a single string, undoing
	// whatever continuation or word-boundary marking the scheme uses.
	Detokenize(tokens []string) string

	// ContinuationPrefix returns the marker prepended to non-initial sub-word
	// tokens (e.g. "##" for WordPiece), or "" when the scheme has none.
	ContinuationPrefix() string
}

// UnknownPreserving is implemented by sub-tokenizers that can emit the
// original word in place of the unknown-token placeholder. GetOffsetMapping
// prefers it, so unknown words still align against the source text.
type UnknownPreserving interface {
	TokenizeWordPreserveUnknown(text string) []string
}

// Whitespace is the simplest SubTokenizer: words split on whitespace, joined
// back with single spaces. Useful for word-level vocabularies and as a test
// double.
type Whitespace struct{}

// Compile time assert that Whitespace implements SubTokenizer.
var _ SubTokenizer = Whitespace{}

func (Whitespace) TokenizeWord(text string) []string {
	return strings.Fields(text)
}

func (Whitespace) Detokenize(tokens []string) string {
	return strings.Join(tokens, " ")
}

func (Whitespace) ContinuationPrefix() string { return "" }
