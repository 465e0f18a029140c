// Package sentencepiece adapts the SentencePiece tokenizer by Google as a
// tokenizer.SubTokenizer, letting the core pipeline drive a unigram or BPE
// model instead of WordPiece.
package sentencepiece

import (
	"strings"

	esentencepiece "github.com/eliben/go-sentencepiece"
	"github.com/pkg/errors"

	"github.com/gomlx/go-tokenizer/tokenizer"
)

// metaspace is U+2581 (lower one eighth block), the space replacement
// SentencePiece uses inside pieces.
const metaspace = "▁"

// SubTokenizer wraps a SentencePiece processor. It is immutable after
// construction and safe for concurrent use.
type SubTokenizer struct {
	proc *esentencepiece.Processor
	info *esentencepiece.ModelInfo
}

var _ tokenizer.SubTokenizer = &SubTokenizer{}

// NewFromPath loads a SentencePiece model proto (the usual
// "tokenizer.model" file) and wraps it as a sub-tokenizer.
func NewFromPath(modelPath string) (*SubTokenizer, error) {
	proc, err := esentencepiece.NewProcessorFromPath(modelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "can't create sentencepiece tokenizer from %q", modelPath)
	}
	return &SubTokenizer{proc: proc, info: proc.ModelInfo()}, nil
}

// Processor returns the underlying SentencePiece processor.
func (s *SubTokenizer) Processor() *esentencepiece.Processor { return s.proc }

// UnknownID returns the id SentencePiece assigns to unknown pieces.
func (s *SubTokenizer) UnknownID() int { return s.info.UnknownID }

// TokenizeWord encodes text and returns the surface form of each piece.
func (s *SubTokenizer) TokenizeWord(text string) []string {
	tokens := s.proc.Encode(text)
	pieces := make([]string, len(tokens))
	for i, tok := range tokens {
		pieces[i] = tok.Text
	}
	return pieces
}

// Detokenize fuses pieces back into text: pieces concatenate directly and the
// metaspace marker becomes a regular space.
func (s *SubTokenizer) Detokenize(tokens []string) string {
	text := strings.Join(tokens, "")
	text = strings.ReplaceAll(text, metaspace, " ")
	return strings.TrimLeft(text, " ")
}

// ContinuationPrefix returns "": SentencePiece marks word starts with the
// metaspace, not continuations with a prefix.
func (s *SubTokenizer) ContinuationPrefix() string { return "" }
