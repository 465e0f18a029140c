package tokenizer

// PaddingStrategy selects how encodings are padded after assembly.
type PaddingStrategy int

const (
	// NoPadding leaves encodings at their natural length.
	NoPadding PaddingStrategy = iota
	// PadToMaxLength pads every encoding to EncodeOptions.MaxLength.
	PadToMaxLength
	// PadToLongest pads every encoding to the longest one in the batch.
	PadToLongest
)

// TruncationStrategy selects which sequence loses tokens when a pair exceeds
// the length budget.
type TruncationStrategy int

const (
	// NoTruncation disables truncation.
	NoTruncation TruncationStrategy = iota
	// TruncateLongestFirst removes tokens one at a time from whichever
	// sequence is currently longer.
	TruncateLongestFirst
	// TruncateOnlyFirst removes tokens from the end of the first sequence.
	TruncateOnlyFirst
	// TruncateOnlySecond removes tokens from the end of the second sequence.
	TruncateOnlySecond
)

// EncodeOptions configures EncodeSingle and EncodeBatch. The zero value adds
// no special tokens, never truncates or pads, and returns input ids only.
type EncodeOptions struct {
	AddSpecialTokens bool
	Padding          PaddingStrategy
	Truncation       TruncationStrategy
	MaxLength        int
	Stride           int
	PadToMultipleOf  int

	ReturnTokenTypeIDs      bool
	ReturnAttentionMask     bool
	ReturnSpecialTokensMask bool
	ReturnOffsets           bool
	ReturnPositionIDs       bool
	ReturnLength            bool
	ReturnOverflowingTokens bool
}

// Encoding is the record produced for one example (or one sliding window of
// one example). It is created fresh per call and owned by the caller; fields
// beyond InputIDs are filled only when requested.
type Encoding struct {
	InputIDs          []int
	TokenTypeIDs      []int
	AttentionMask     []int
	SpecialTokensMask []int
	OffsetMapping     []Span
	PositionIDs       []int
	OverflowingTokens []int

	// Length is the sequence length before padding, filled when
	// ReturnLength is set.
	Length int

	// OverflowToSample is the index of the batch example this sliding-window
	// encoding came from, or -1 when not produced by windowing.
	OverflowToSample int
}

// Sequence is one encode input: exactly one of Text (raw text), Words
// (pre-split words, each tokenized separately) or IDs (already encoded) must
// be set.
type Sequence struct {
	Text  string
	Words []string
	IDs   []int
}

// SequencePair is one batch example: a first sequence and an optional second.
type SequencePair struct {
	First  Sequence
	Second *Sequence
}

func (s Sequence) inputIDs(t *Tokenizer) ([]int, error) {
	set := 0
	if s.Text != "" {
		set++
	}
	if s.Words != nil {
		set++
	}
	if s.IDs != nil {
		set++
	}
	if set != 1 {
		return nil, wrapInvalidf("sequence must set exactly one of Text, Words or IDs, got %d fields set", set)
	}
	switch {
	case s.IDs != nil:
		return s.IDs, nil
	case s.Words != nil:
		var tokens []string
		for _, w := range s.Words {
			tokens = append(tokens, t.Tokenize(w)...)
		}
		return t.ConvertTokensToIDs(tokens), nil
	default:
		return t.ConvertTokensToIDs(t.Tokenize(s.Text)), nil
	}
}

// EncodeSingle encodes one sequence or sequence pair into a fully assembled
// Encoding: truncation, special tokens, requested extra fields, and padding
// per opts.
func (t *Tokenizer) EncodeSingle(first Sequence, second *Sequence, opts EncodeOptions) (*Encoding, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	ids, err := first.inputIDs(t)
	if err != nil {
		return nil, err
	}
	var pairIDs []int
	if second != nil {
		pairIDs, err = second.inputIDs(t)
		if err != nil {
			return nil, err
		}
	}
	enc, err := t.prepareForModel(ids, pairIDs, first, second, opts)
	if err != nil {
		return nil, err
	}
	if err := t.Pad([]*Encoding{enc}, opts); err != nil {
		return nil, err
	}
	return enc, nil
}

// EncodeBatch encodes every example independently, defers padding until all
// examples are assembled, and pads them as one batch.
//
// When opts.Stride is positive and an example has a second sequence, that
// example expands into multiple sliding-window encodings covering the whole
// second sequence; each carries OverflowToSample pointing back at the
// example.
func (t *Tokenizer) EncodeBatch(examples []SequencePair, opts EncodeOptions) ([]*Encoding, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	var out []*Encoding
	for exampleIdx, ex := range examples {
		ids, err := ex.First.inputIDs(t)
		if err != nil {
			return nil, err
		}
		var pairIDs []int
		if ex.Second != nil {
			pairIDs, err = ex.Second.inputIDs(t)
			if err != nil {
				return nil, err
			}
		}

		if opts.Stride > 0 && pairIDs != nil {
			windows, err := t.encodeWindows(ids, pairIDs, ex, exampleIdx, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, windows...)
			continue
		}

		deferred := opts
		deferred.Padding = NoPadding // padding happens once, over the whole batch
		enc, err := t.prepareForModel(ids, pairIDs, ex.First, ex.Second, deferred)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}

	if err := t.Pad(out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func validateOptions(opts EncodeOptions) error {
	if opts.ReturnTokenTypeIDs && !opts.AddSpecialTokens {
		return wrapInvalidf("ReturnTokenTypeIDs with AddSpecialTokens disabled is undefined; enable AddSpecialTokens or drop ReturnTokenTypeIDs")
	}
	if opts.Padding == PadToMaxLength && opts.MaxLength <= 0 {
		return wrapInvalidf("Padding PadToMaxLength requires a positive MaxLength, got %d", opts.MaxLength)
	}
	return nil
}

// prepareForModel assembles one encoding from already-converted id lists:
// truncation to MaxLength (accounting for special-token overhead), special
// token insertion via the builder, and the requested optional fields.
// Padding is not applied here.
func (t *Tokenizer) prepareForModel(ids, pairIDs []int, first Sequence, second *Sequence, opts EncodeOptions) (*Encoding, error) {
	overhead := 0
	if opts.AddSpecialTokens {
		overhead = t.NumSpecialTokensToAdd(pairIDs != nil)
	}
	total := len(ids) + len(pairIDs) + overhead

	enc := &Encoding{OverflowToSample: -1}
	truncated := false
	numToRemove := 0
	if opts.Truncation != NoTruncation && opts.MaxLength > 0 && total > opts.MaxLength {
		truncated = true
		numToRemove = total - opts.MaxLength
		var overflowing []int
		var err error
		ids, pairIDs, overflowing, err = TruncateSequences(ids, pairIDs, numToRemove, opts.Truncation, opts.Stride)
		if err != nil {
			return nil, err
		}
		if opts.ReturnOverflowingTokens {
			enc.OverflowingTokens = overflowing
		}
	}

	if opts.AddSpecialTokens {
		enc.InputIDs = t.builder.BuildInputsWithSpecialTokens(ids, pairIDs)
		if opts.ReturnTokenTypeIDs {
			enc.TokenTypeIDs = t.builder.TokenTypeIDs(ids, pairIDs)
		}
		if opts.ReturnSpecialTokensMask {
			enc.SpecialTokensMask = t.builder.SpecialTokensMask(ids, pairIDs)
		}
	} else {
		enc.InputIDs = noSpecialsBuilder{}.BuildInputsWithSpecialTokens(ids, pairIDs)
		if opts.ReturnSpecialTokensMask {
			enc.SpecialTokensMask = make([]int, len(enc.InputIDs))
		}
	}

	if opts.ReturnOffsets && first.Text != "" {
		mapping, err := t.GetOffsetMapping(first.Text)
		if err != nil {
			return nil, err
		}
		var pairMapping []Span
		if second != nil && second.Text != "" {
			pairMapping, err = t.GetOffsetMapping(second.Text)
			if err != nil {
				return nil, err
			}
		}
		if truncated {
			mapping, pairMapping, _, err = TruncateSequences(mapping, pairMapping, numToRemove, opts.Truncation, opts.Stride)
			if err != nil {
				return nil, err
			}
		}
		if opts.AddSpecialTokens {
			enc.OffsetMapping = t.builder.BuildOffsetsWithSpecialTokens(mapping, pairMapping)
		} else {
			enc.OffsetMapping = noSpecialsBuilder{}.BuildOffsetsWithSpecialTokens(mapping, pairMapping)
		}
	}

	if opts.ReturnPositionIDs {
		enc.PositionIDs = iotaInts(len(enc.InputIDs))
	}
	if opts.ReturnLength {
		enc.Length = len(enc.InputIDs)
	}
	return enc, nil
}

// encodeWindows slides a window over the second sequence, producing one full
// encoding per window. The window width is the length budget left by the
// first sequence and the special-token overhead; consecutive windows overlap
// by stride ids.
func (t *Tokenizer) encodeWindows(ids, pairIDs []int, ex SequencePair, exampleIdx int, opts EncodeOptions) ([]*Encoding, error) {
	if opts.MaxLength <= 0 {
		return nil, wrapInvalidf("Stride windowing over a pair requires a positive MaxLength, got %d", opts.MaxLength)
	}
	overhead := 0
	if opts.AddSpecialTokens {
		overhead = t.NumSpecialTokensToAdd(true)
	}
	maxLenForPair := opts.MaxLength - len(ids) - overhead
	if maxLenForPair <= 0 {
		return nil, wrapInvalidf("MaxLength %d leaves no room for the second sequence (first sequence %d ids, %d special tokens)",
			opts.MaxLength, len(ids), overhead)
	}

	var mapping, pairMapping []Span
	if opts.ReturnOffsets && ex.First.Text != "" && ex.Second != nil && ex.Second.Text != "" {
		var err error
		mapping, err = t.GetOffsetMapping(ex.First.Text)
		if err != nil {
			return nil, err
		}
		pairMapping, err = t.GetOffsetMapping(ex.Second.Text)
		if err != nil {
			return nil, err
		}
	}

	var out []*Encoding
	offset := 0
	for offset < len(pairIDs) {
		length := len(pairIDs) - offset
		if length > maxLenForPair {
			length = maxLenForPair
		}
		window := pairIDs[offset : offset+length]

		enc := &Encoding{OverflowToSample: exampleIdx}
		if opts.AddSpecialTokens {
			enc.InputIDs = t.builder.BuildInputsWithSpecialTokens(ids, window)
			if opts.ReturnTokenTypeIDs {
				enc.TokenTypeIDs = t.builder.TokenTypeIDs(ids, window)
			}
			if opts.ReturnSpecialTokensMask {
				enc.SpecialTokensMask = t.builder.SpecialTokensMask(ids, window)
			}
			if mapping != nil {
				enc.OffsetMapping = t.builder.BuildOffsetsWithSpecialTokens(mapping, pairMapping[offset:offset+length])
			}
		} else {
			enc.InputIDs = noSpecialsBuilder{}.BuildInputsWithSpecialTokens(ids, window)
			if opts.ReturnSpecialTokensMask {
				enc.SpecialTokensMask = make([]int, len(enc.InputIDs))
			}
			if mapping != nil {
				enc.OffsetMapping = noSpecialsBuilder{}.BuildOffsetsWithSpecialTokens(mapping, pairMapping[offset:offset+length])
			}
		}
		if opts.ReturnPositionIDs {
			enc.PositionIDs = iotaInts(len(enc.InputIDs))
		}
		if opts.ReturnLength {
			enc.Length = len(enc.InputIDs)
		}
		out = append(out, enc)

		if offset+length == len(pairIDs) {
			break
		}
		step := length
		if opts.Stride < step {
			step = opts.Stride
		}
		offset += step
	}
	return out, nil
}

// TruncateSequences removes numToRemove elements from ids and/or pairIDs
// according to strategy and returns the truncated sequences plus the removed
// overflow.
//
// TruncateOnlyFirst and TruncateOnlySecond cut from the end of the chosen
// sequence; the overflow is the last numToRemove+stride elements of that
// sequence, preserving a stride-sized overlap for re-encoding.
// TruncateLongestFirst removes one element at a time from whichever sequence
// is currently longer; the overflow holds the removed elements in removal
// order. The input slices are never mutated.
func TruncateSequences[T any](ids, pairIDs []T, numToRemove int, strategy TruncationStrategy, stride int) (outIDs, outPairIDs, overflowing []T, err error) {
	if numToRemove <= 0 || strategy == NoTruncation {
		return ids, pairIDs, nil, nil
	}
	switch strategy {
	case TruncateLongestFirst:
		outIDs, outPairIDs = ids, pairIDs
		for i := 0; i < numToRemove; i++ {
			if len(outPairIDs) == 0 || len(outIDs) > len(outPairIDs) {
				if len(outIDs) == 0 {
					return nil, nil, nil, wrapInvalidf("cannot remove %d tokens: both sequences exhausted after %d removals", numToRemove, i)
				}
				overflowing = append(overflowing, outIDs[len(outIDs)-1])
				outIDs = outIDs[:len(outIDs)-1]
			} else {
				overflowing = append(overflowing, outPairIDs[len(outPairIDs)-1])
				outPairIDs = outPairIDs[:len(outPairIDs)-1]
			}
		}
		return outIDs, outPairIDs, overflowing, nil

	case TruncateOnlyFirst:
		if len(ids) <= numToRemove {
			return nil, nil, nil, wrapInvalidf("cannot remove %d tokens from the first sequence of length %d; use TruncateLongestFirst instead", numToRemove, len(ids))
		}
		window := numToRemove + stride
		if window > len(ids) {
			window = len(ids)
		}
		overflowing = append([]T(nil), ids[len(ids)-window:]...)
		return ids[:len(ids)-numToRemove], pairIDs, overflowing, nil

	case TruncateOnlySecond:
		if len(pairIDs) <= numToRemove {
			return nil, nil, nil, wrapInvalidf("cannot remove %d tokens from the second sequence of length %d; use TruncateLongestFirst instead", numToRemove, len(pairIDs))
		}
		window := numToRemove + stride
		if window > len(pairIDs) {
			window = len(pairIDs)
		}
		overflowing = append([]T(nil), pairIDs[len(pairIDs)-window:]...)
		return ids, pairIDs[:len(pairIDs)-numToRemove], overflowing, nil
	}
	return ids, pairIDs, nil, nil
}

func iotaInts(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
