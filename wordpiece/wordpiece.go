// Package wordpiece implements greedy longest-match-first sub-word
// tokenization over a fixed vocabulary, with continuation pieces marked by a
// "##" prefix, plus the basic text cleanup that traditionally precedes it
// (control-character removal, CJK isolation, optional lower-casing and
// punctuation splitting).
package wordpiece

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/gomlx/go-tokenizer/chars"
	"github.com/gomlx/go-tokenizer/tokenizer"
	"github.com/gomlx/go-tokenizer/vocab"
)

const (
	// continuationPrefix marks vocabulary entries that continue a word.
	continuationPrefix = "##"

	// defaultMaxInputCharsPerWord bounds the greedy search per word; longer
	// words map to the unknown token without being searched.
	defaultMaxInputCharsPerWord = 100
)

// Config adjusts the cleanup stage and the greedy matcher.
type Config struct {
	// UnkToken substitutes words with no vocabulary cover. Empty selects the
	// vocabulary's own unknown token.
	UnkToken string

	// MaxInputCharsPerWord is the longest word (in runes) the matcher will
	// attempt; 0 selects defaultMaxInputCharsPerWord.
	MaxInputCharsPerWord int

	// DoLowerCase lower-cases words during cleanup.
	DoLowerCase bool

	// StripAccents removes combining marks during cleanup. nil means "strip
	// when DoLowerCase is set".
	StripAccents *bool

	// SplitOnPunctuation makes every punctuation character its own word
	// during cleanup.
	SplitOnPunctuation bool
}

// WordPiece tokenizes whitespace-separated words into vocabulary pieces. It
// is immutable after construction and safe for concurrent use.
type WordPiece struct {
	vocab    *vocab.Vocab
	unkToken string
	maxChars int
	config   Config
}

var (
	_ tokenizer.SubTokenizer      = &WordPiece{}
	_ tokenizer.UnknownPreserving = &WordPiece{}
)

// New builds a WordPiece tokenizer over v.
func New(v *vocab.Vocab, config Config) (*WordPiece, error) {
	if v == nil {
		return nil, errors.Errorf("vocabulary must not be nil")
	}
	unk := config.UnkToken
	if unk == "" {
		unk = v.UnkToken()
	}
	if unk == "" {
		return nil, errors.Errorf("an unknown token is required, either in the config or in the vocabulary")
	}
	maxChars := config.MaxInputCharsPerWord
	if maxChars <= 0 {
		maxChars = defaultMaxInputCharsPerWord
	}
	return &WordPiece{vocab: v, unkToken: unk, maxChars: maxChars, config: config}, nil
}

// TokenizeWord cleans text and converts each resulting word into vocabulary
// pieces, substituting the unknown token for words with no cover.
func (w *WordPiece) TokenizeWord(text string) []string {
	return w.tokenize(text, false)
}

// TokenizeWordPreserveUnknown is TokenizeWord except words with no
// vocabulary cover keep their surface form instead of becoming the unknown
// token. Offset mapping relies on this to locate such words in the text.
func (w *WordPiece) TokenizeWordPreserveUnknown(text string) []string {
	return w.tokenize(text, true)
}

func (w *WordPiece) tokenize(text string, preserveUnknown bool) []string {
	var out []string
	for _, word := range w.basicTokenize(text) {
		out = append(out, w.wordToPieces(word, preserveUnknown)...)
	}
	return out
}

// Detokenize joins pieces with spaces and fuses continuation pieces back onto
// their word.
func (w *WordPiece) Detokenize(tokens []string) string {
	text := strings.Join(tokens, " ")
	text = strings.ReplaceAll(text, " "+continuationPrefix, "")
	return strings.TrimSpace(text)
}

// ContinuationPrefix returns "##".
func (w *WordPiece) ContinuationPrefix() string { return continuationPrefix }

// wordToPieces greedily matches the longest vocabulary piece at each
// position. The first piece is matched verbatim, every following piece with
// the continuation prefix. A position with no match at all fails the whole
// word.
func (w *WordPiece) wordToPieces(word string, preserveUnknown bool) []string {
	runes := []rune(word)
	if len(runes) > w.maxChars {
		if preserveUnknown {
			return []string{word}
		}
		return []string{w.unkToken}
	}

	var pieces []string
	start := 0
	for start < len(runes) {
		matched := ""
		for end := len(runes); end > start; end-- {
			piece := string(runes[start:end])
			if start > 0 {
				piece = continuationPrefix + piece
			}
			if _, ok := w.vocab.Lookup(piece); ok {
				matched = piece
				start = end
				break
			}
		}
		if matched == "" {
			if preserveUnknown {
				return []string{word}
			}
			return []string{w.unkToken}
		}
		pieces = append(pieces, matched)
	}
	return pieces
}

// basicTokenize cleans text and splits it into words: invalid and control
// characters are dropped, whitespace collapses to single spaces, CJK
// characters are isolated, and optionally words are lower-cased,
// accent-stripped and split at punctuation.
func (w *WordPiece) basicTokenize(text string) []string {
	text = cleanText(text)
	text = strings.Join(chars.SplitCJK(text), " ")

	var words []string
	for _, word := range chars.WhitespaceSplit(text) {
		if w.config.DoLowerCase {
			word = strings.ToLower(word)
			if w.config.StripAccents == nil || *w.config.StripAccents {
				word = removeAccents(word)
			}
		} else if w.config.StripAccents != nil && *w.config.StripAccents {
			word = removeAccents(word)
		}
		if w.config.SplitOnPunctuation {
			words = append(words, splitPunctuation(word)...)
		} else {
			words = append(words, word)
		}
	}
	return words
}

// cleanText drops NUL, replacement character and control characters and maps all
// whitespace to plain spaces.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == 0xFFFD || chars.IsControl(r) {
			continue
		}
		if chars.IsWhitespace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// splitPunctuation cuts word at every punctuation character, each punctuation
// character becoming its own word.
func splitPunctuation(word string) []string {
	var out []string
	var current strings.Builder
	for _, r := range word {
		if chars.IsPunctuation(r) {
			if current.Len() > 0 {
				out = append(out, current.String())
				current.Reset()
			}
			out = append(out, string(r))
			continue
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

// removeAccents strips combining marks after canonical decomposition.
func removeAccents(s string) string {
	s = norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
