// Package chars provides the single-codepoint classifiers and text-level
// normalization passes shared by the tokenization pipeline. The codepoint
// ranges follow the CJK Unified Ideograph blocks and the Unicode range
// listing at https://www.ling.upenn.edu/courses/Spring_2003/ling538/UnicodeRanges.html.
package chars

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// IsWhitespace reports whether r is a whitespace character.
// \t, \n and \r are technically control characters but are treated as
// whitespace since they are generally considered as such.
func IsWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// IsControl reports whether r is a control character. Tab, newline and
// carriage return count as whitespace instead.
func IsControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.In(r, unicode.C)
}

// IsPunctuation reports whether r is a punctuation character.
// All non-letter/number ASCII is treated as punctuation: characters such as
// "^", "$" and "`" are not in the Unicode punctuation class but splitting on
// them is the consistent thing to do.
func IsPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.In(r, unicode.P)
}

// legacySymbols are codepoints outside Unicode category S that some
// vocabularies were built treating as symbols.
var legacySymbols = map[rune]bool{
	0x00AD: true, 0x00B2: true, 0x00BA: true, 0x3007: true,
	0x00B5: true, 0x00D8: true, 0x014B: true, 0x01B1: true,
}

// IsSymbol reports whether r is a symbol character (Unicode category S or one
// of the legacy exceptions).
func IsSymbol(r rune) bool {
	return unicode.In(r, unicode.S) || legacySymbols[r]
}

// IsCJK reports whether r is a codepoint of a CJK character, defined as
// anything in the CJK Unified Ideographs blocks:
// https://en.wikipedia.org/wiki/CJK_Unified_Ideographs_(Unicode_block)
//
// Note that the CJK Unicode block is NOT all Japanese and Korean characters,
// despite its name. The modern Korean Hangul alphabet is a different block,
// as are Japanese Hiragana and Katakana.
func IsCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2B73F) ||
		(r >= 0x2B740 && r <= 0x2B81F) ||
		(r >= 0x2B820 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}

// IsNonNormalized reports whether r is a compatibility form that Normalize
// replaces with its NFKC expansion.
func IsNonNormalized(r rune) bool {
	return (r >= 0xFF00 && r <= 0xFFEF) || // Halfwidth and Fullwidth Forms
		(r >= 0xFE50 && r <= 0xFE6B) || // Small Form Variants
		(r >= 0x3358 && r <= 0x33FF) || // CJK Compatibility
		(r >= 0x249C && r <= 0x24E9) || // Enclosed Alphanumerics: Ⓛ ⒰
		(r >= 0x3200 && r <= 0x32FF) // Enclosed CJK Letters and Months
}

// IsNonNormalizedNumeric reports whether r is an enclosed or number-form
// numeral that Normalize replaces with its spelled-out decimal value.
func IsNonNormalizedNumeric(r rune) bool {
	return (r >= 0x2460 && r <= 0x249B) ||
		(r >= 0x24EA && r <= 0x24FF) ||
		(r >= 0x2776 && r <= 0x2793) || // Enclosed Alphanumerics
		(r >= 0x2160 && r <= 0x217F) // Number Forms
}

// numericValue returns the integral numeric value of the runes accepted by
// IsNonNormalizedNumeric. The sub-ranges are fixed by the Unicode blocks.
func numericValue(r rune) int {
	switch {
	case r >= 0x2460 && r <= 0x2473: // circled 1..20
		return int(r-0x2460) + 1
	case r >= 0x2474 && r <= 0x2487: // parenthesized 1..20
		return int(r-0x2474) + 1
	case r >= 0x2488 && r <= 0x249B: // full stop 1..20
		return int(r-0x2488) + 1
	case r == 0x24EA || r == 0x24FF: // circled zero, negative circled zero
		return 0
	case r >= 0x24EB && r <= 0x24F4: // negative circled 11..20
		return int(r-0x24EB) + 11
	case r >= 0x24F5 && r <= 0x24FE: // double circled 1..10
		return int(r-0x24F5) + 1
	case r >= 0x2776 && r <= 0x277F: // dingbat negative circled 1..10
		return int(r-0x2776) + 1
	case r >= 0x2780 && r <= 0x2789: // dingbat circled sans-serif 1..10
		return int(r-0x2780) + 1
	case r >= 0x278A && r <= 0x2793: // dingbat negative circled sans-serif 1..10
		return int(r-0x278A) + 1
	case r >= 0x2160 && r <= 0x217F: // Roman numerals, upper then lower case
		return romanValues[(r-0x2160)%16]
	}
	return 0
}

// romanValues holds the values of U+2160..U+216F (repeated for the lowercase
// block U+2170..U+217F).
var romanValues = [16]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 50, 100, 500, 1000}

// Normalize rewrites compatibility forms for multilingual and Chinese
// vocabularies: non-normalized forms expand to their NFKC normalization,
// enclosed numerals become " <value> ", and the single legacy codepoint
// U+F979 becomes 凉 (it NFKC-normalizes to 涼, which those vocabularies do
// not carry). Everything else passes through unchanged.
func Normalize(text string) string {
	var out strings.Builder
	out.Grow(len(text))
	for _, r := range text {
		switch {
		case IsNonNormalized(r):
			out.WriteString(norm.NFKC.String(string(r)))
		case IsNonNormalizedNumeric(r):
			out.WriteByte(' ')
			out.WriteString(strconv.Itoa(numericValue(r)))
			out.WriteByte(' ')
		case r == 0xF979:
			out.WriteRune('凉')
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}

// SplitCJK splits text into fragments where every CJK character is its own
// fragment and all other runs are merged. Concatenating the fragments
// reproduces the input exactly.
func SplitCJK(text string) []string {
	var out []string
	var buf strings.Builder
	for _, r := range text {
		if IsCJK(r) {
			if buf.Len() > 0 {
				out = append(out, buf.String())
				buf.Reset()
			}
			out = append(out, string(r))
		} else {
			buf.WriteRune(r)
		}
	}
	if buf.Len() > 0 {
		out = append(out, buf.String())
	}
	return out
}

// SpaceAroundScripts inserts a space before and after any character in the
// Japanese kana, Greek/Coptic and Cyrillic, or IPA blocks, and around any
// symbol character.
func SpaceAroundScripts(text string) string {
	var out strings.Builder
	out.Grow(len(text))
	for _, r := range text {
		if (r >= 0x3040 && r <= 0x30FF) || // Japanese kana
			(r >= 0x0370 && r <= 0x04FF) || // Greek/Coptic & Cyrillic
			(r >= 0x0250 && r <= 0x02AF) || // IPA extensions
			IsSymbol(r) {
			out.WriteByte(' ')
			out.WriteRune(r)
			out.WriteByte(' ')
		} else {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// WhitespaceSplit runs basic whitespace cleaning and splitting on a piece of
// text.
func WhitespaceSplit(text string) []string {
	return strings.Fields(text)
}

// IsStartOfWord reports whether text starts at a word boundary, i.e. its
// first character is punctuation, control or whitespace.
func IsStartOfWord(text string) bool {
	for _, r := range text {
		return IsControl(r) || IsPunctuation(r) || IsWhitespace(r)
	}
	return false
}

// IsEndOfWord reports whether text ends at a word boundary, i.e. its last
// character is punctuation, control or whitespace.
func IsEndOfWord(text string) bool {
	runes := []rune(text)
	if len(runes) == 0 {
		return false
	}
	last := runes[len(runes)-1]
	return IsControl(last) || IsPunctuation(last) || IsWhitespace(last)
}
