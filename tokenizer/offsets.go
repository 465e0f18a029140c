package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"

	"github.com/gomlx/go-tokenizer/chars"
)

// Span is the half-open byte range [Start, End) of a token in the original
// text, suitable for slicing Go strings directly: text[span.Start:span.End].
type Span struct {
	Start int
	End   int
}

// GetOffsetMapping returns one Span per token produced by tokenizing text,
// pointing into the original (pre-normalization) text.
//
// A normalized working copy of text is built character by character while
// recording, for every emitted character, the byte range of the original
// character that produced it. Each token is then located sequentially in the
// working copy and its match projected back through that recording. A token
// that cannot be located yields an error wrapping ErrAlignment.
func (t *Tokenizer) GetOffsetMapping(text string) ([]Span, error) {
	splitTokens := t.splitTokensForOffsets(text)

	var normRunes []rune
	var origStart, origEnd []int
	for i := 0; i < len(text); {
		r, w := utf8.DecodeRuneInString(text[i:])
		chunk := string(r)
		if t.config.DoLowerCase {
			chunk = strings.ToLower(chunk)
			if t.config.StripAccents == nil || *t.config.StripAccents {
				chunk = stripAccents(chunk)
			}
		} else if t.config.StripAccents != nil && *t.config.StripAccents {
			chunk = stripAccents(chunk)
		}
		for _, c := range chunk {
			if c == 0 || c == 0xFFFD || chars.IsControl(c) {
				continue
			}
			normRunes = append(normRunes, c)
			origStart = append(origStart, i)
			origEnd = append(origEnd, i+w)
		}
		i += w
	}

	prefix := t.sub.ContinuationPrefix()
	mapping := make([]Span, 0, len(splitTokens))
	offset := 0
	for _, token := range splitTokens {
		if prefix != "" {
			token = strings.TrimPrefix(token, prefix)
		}
		if t.config.DoLowerCase && t.specialSet[token] {
			token = strings.ToLower(token)
		}
		tokRunes := []rune(token)
		if len(tokRunes) == 0 {
			mapping = append(mapping, Span{})
			continue
		}
		// Both lowercase sigma forms must match each other: vocabularies and
		// normalizers disagree on the word-final form.
		fold := strings.ContainsRune(token, 'σ') || strings.ContainsRune(token, 'ς')
		start := searchRunes(normRunes, tokRunes, offset, fold)
		if start < 0 {
			return nil, errors.Wrapf(ErrAlignment, "token %q not found in the normalized text past position %d", token, offset)
		}
		end := start + len(tokRunes)
		mapping = append(mapping, Span{Start: origStart[start], End: origEnd[end-1]})
		offset = end
	}
	return mapping, nil
}

// splitTokensForOffsets tokenizes text through the sub-tokenization stage
// only, preserving the surface form of unknown words when the sub-tokenizer
// supports it.
func (t *Tokenizer) splitTokensForOffsets(text string) []string {
	tokenizeFrag := t.sub.TokenizeWord
	if up, ok := t.sub.(UnknownPreserving); ok {
		tokenizeFrag = up.TokenizeWordPreserveUnknown
	}
	return t.tokenizePipeline(text, tokenizeFrag)
}

// stripAccents removes combining marks after canonical decomposition.
func stripAccents(s string) string {
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

// searchRunes finds the first occurrence of needle in haystack at or after
// from, optionally treating the two lowercase sigma forms as equal.
func searchRunes(haystack, needle []rune, from int, foldSigma bool) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(needle) <= len(haystack); i++ {
		found := true
		for j, nr := range needle {
			hr := haystack[i+j]
			if foldSigma {
				hr = sigmaFold(hr)
				nr = sigmaFold(nr)
			}
			if hr != nr {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}

func sigmaFold(r rune) rune {
	if r == 'ς' {
		return 'σ'
	}
	return r
}
