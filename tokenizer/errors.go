package tokenizer

import "github.com/pkg/errors"

// ErrInvalidInput marks caller precondition violations: malformed Sequence
// values, incompatible option combinations, or impossible truncation
// requests. Wrapped errors name the offending argument; test with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// ErrAlignment marks a failure to locate a token in the normalized text while
// building the offset mapping. It indicates an inconsistency between the
// tokenization and normalization configuration and is never retried.
var ErrAlignment = errors.New("cannot align token with the normalized text")

func wrapInvalidf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}
