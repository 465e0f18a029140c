package tokenizer

// SequenceBuilder assembles model-ready sequences out of one or two id lists.
// It is the model-specific collaborator deciding where special tokens go;
// the core never hard-codes a layout.
type SequenceBuilder interface {
	// BuildInputsWithSpecialTokens inserts the model's special tokens around
	// ids and the optional pairIDs (nil for a single sequence).
	BuildInputsWithSpecialTokens(ids, pairIDs []int) []int

	// TokenTypeIDs returns the segment ids for the sequence built from ids
	// and pairIDs, aligned with BuildInputsWithSpecialTokens.
	TokenTypeIDs(ids, pairIDs []int) []int

	// BuildOffsetsWithSpecialTokens inserts placeholder spans for the special
	// tokens, aligned with BuildInputsWithSpecialTokens.
	BuildOffsetsWithSpecialTokens(offsets, pairOffsets []Span) []Span

	// SpecialTokensMask returns 1 for every special-token position of the
	// built sequence and 0 elsewhere.
	SpecialTokensMask(ids, pairIDs []int) []int
}

// noSpecialsBuilder adds no special tokens at all: sequences are plain
// concatenations, segment ids are 0 for the first sequence and 1 for the
// second.
type noSpecialsBuilder struct{}

var _ SequenceBuilder = noSpecialsBuilder{}

func (noSpecialsBuilder) BuildInputsWithSpecialTokens(ids, pairIDs []int) []int {
	out := make([]int, 0, len(ids)+len(pairIDs))
	out = append(out, ids...)
	return append(out, pairIDs...)
}

func (noSpecialsBuilder) TokenTypeIDs(ids, pairIDs []int) []int {
	out := make([]int, len(ids)+len(pairIDs))
	for i := range pairIDs {
		out[len(ids)+i] = 1
	}
	return out
}

func (noSpecialsBuilder) BuildOffsetsWithSpecialTokens(offsets, pairOffsets []Span) []Span {
	out := make([]Span, 0, len(offsets)+len(pairOffsets))
	out = append(out, offsets...)
	return append(out, pairOffsets...)
}

func (noSpecialsBuilder) SpecialTokensMask(ids, pairIDs []int) []int {
	return make([]int, len(ids)+len(pairIDs))
}

// BertSequenceBuilder assembles the classic [CLS] A [SEP] (B [SEP]) layout
// with segment id 0 for the first sequence and 1 for the second.
type BertSequenceBuilder struct {
	ClsID int
	SepID int
}

var _ SequenceBuilder = BertSequenceBuilder{}

func (b BertSequenceBuilder) BuildInputsWithSpecialTokens(ids, pairIDs []int) []int {
	out := make([]int, 0, len(ids)+len(pairIDs)+3)
	out = append(out, b.ClsID)
	out = append(out, ids...)
	out = append(out, b.SepID)
	if pairIDs != nil {
		out = append(out, pairIDs...)
		out = append(out, b.SepID)
	}
	return out
}

func (b BertSequenceBuilder) TokenTypeIDs(ids, pairIDs []int) []int {
	out := make([]int, len(ids)+2, len(ids)+len(pairIDs)+3)
	if pairIDs != nil {
		for range pairIDs {
			out = append(out, 1)
		}
		out = append(out, 1)
	}
	return out
}

func (b BertSequenceBuilder) BuildOffsetsWithSpecialTokens(offsets, pairOffsets []Span) []Span {
	out := make([]Span, 0, len(offsets)+len(pairOffsets)+3)
	out = append(out, Span{})
	out = append(out, offsets...)
	out = append(out, Span{})
	if pairOffsets != nil {
		out = append(out, pairOffsets...)
		out = append(out, Span{})
	}
	return out
}

func (b BertSequenceBuilder) SpecialTokensMask(ids, pairIDs []int) []int {
	out := make([]int, 0, len(ids)+len(pairIDs)+3)
	out = append(out, 1)
	out = append(out, make([]int, len(ids))...)
	out = append(out, 1)
	if pairIDs != nil {
		out = append(out, make([]int, len(pairIDs))...)
		out = append(out, 1)
	}
	return out
}

// NumSpecialTokensToAdd returns how many special tokens the builder inserts
// when encoding a single sequence or a pair.
func (t *Tokenizer) NumSpecialTokensToAdd(pair bool) int {
	var pairIDs []int
	if pair {
		pairIDs = []int{}
	}
	return len(t.builder.BuildInputsWithSpecialTokens([]int{}, pairIDs))
}

// GetSpecialTokensMask returns a mask with 1 at special-token positions.
// When alreadyHasSpecialTokens is set, ids must be a fully built sequence and
// pairIDs must be nil; membership is tested against all registered special
// ids. Otherwise the mask describes the sequence the builder would assemble
// from ids and pairIDs.
func (t *Tokenizer) GetSpecialTokensMask(ids, pairIDs []int, alreadyHasSpecialTokens bool) ([]int, error) {
	if alreadyHasSpecialTokens {
		if pairIDs != nil {
			return nil, wrapInvalidf("pairIDs must be nil when alreadyHasSpecialTokens is set: the sequence is already formatted with special tokens")
		}
		specials := make(map[int]bool)
		for _, id := range t.AllSpecialIDs() {
			specials[id] = true
		}
		mask := make([]int, len(ids))
		for i, id := range ids {
			if specials[id] {
				mask[i] = 1
			}
		}
		return mask, nil
	}
	return t.builder.SpecialTokensMask(ids, pairIDs), nil
}
