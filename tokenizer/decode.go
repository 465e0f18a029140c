package tokenizer

import "strings"

// DecodeOptions configures Decode. The zero value keeps special tokens,
// separates added tokens from their surroundings with spaces, and applies
// the configured cleanup hook.
type DecodeOptions struct {
	SkipSpecialTokens        bool
	SpacesBetweenAddedTokens bool
	CleanUpTokenization      bool
}

// DefaultDecodeOptions mirrors the common decode call: keep everything,
// insert spaces around added tokens and clean up tokenization artifacts.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{SpacesBetweenAddedTokens: true, CleanUpTokenization: true}
}

// Decode converts ids back to text. Added and special tokens pass through
// verbatim while runs of ordinary tokens go through the sub-tokenizer's
// detokenizer; the resulting fragments are joined with single spaces (or
// directly when SpacesBetweenAddedTokens is unset).
func (t *Tokenizer) Decode(ids []int, opts DecodeOptions) string {
	tokens := t.ConvertIDsToTokens(ids, opts.SkipSpecialTokens)

	var fragments []string
	var run []string
	flush := func() {
		if len(run) > 0 {
			fragments = append(fragments, t.sub.Detokenize(run))
			run = nil
		}
	}
	for _, token := range tokens {
		if _, added := t.addedTokensEncoder[token]; added || t.specialSet[token] {
			flush()
			fragments = append(fragments, token)
			continue
		}
		run = append(run, token)
	}
	flush()

	sep := ""
	if opts.SpacesBetweenAddedTokens {
		sep = " "
	}
	text := strings.Join(fragments, sep)

	if opts.CleanUpTokenization {
		cleanup := t.config.CleanUp
		if cleanup == nil {
			cleanup = CleanUpTokenization
		}
		text = cleanup(text)
	}
	return text
}

var cleanupReplacer = strings.NewReplacer(
	" .", ".",
	" ?", "?",
	" !", "!",
	" ,", ",",
	" ' ", "' ",
	" n't", "n't",
	" 'm", "'m",
	" 's", "'s",
	" 've", "'ve",
	" 're", "'re",
)

// CleanUpTokenization is the default decode cleanup hook. It removes the
// space the detokenizer inserts before punctuation and contractions.
func CleanUpTokenization(text string) string {
	return cleanupReplacer.Replace(text)
}
