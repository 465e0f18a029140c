package tokenizer

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/go-tokenizer/vocab"
)

// Base vocabulary used by the encode tests: ids are stable and small.
//
//	0 [UNK]  1 [PAD]  2 [CLS]  3 [SEP]  4 a  5 b  6 c  7 d  8 e  9 f  10 g  11 h
func newEncodeTokenizer(t *testing.T, builder SequenceBuilder) *Tokenizer {
	t.Helper()
	v, err := vocab.New([]string{
		"[UNK]", "[PAD]", "[CLS]", "[SEP]",
		"a", "b", "c", "d", "e", "f", "g", "h",
	}, "[UNK]")
	require.NoError(t, err)
	tok, err := New(v, Whitespace{}, Config{
		UnkToken: "[UNK]", PadToken: "[PAD]", ClsToken: "[CLS]", SepToken: "[SEP]",
		Builder: builder,
	})
	require.NoError(t, err)
	return tok
}

func bertBuilder() SequenceBuilder {
	return BertSequenceBuilder{ClsID: 2, SepID: 3}
}

func TestEncodeSingle(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	enc, err := tok.EncodeSingle(Sequence{Text: "a b"}, nil, EncodeOptions{
		AddSpecialTokens:   true,
		ReturnTokenTypeIDs: true,
		ReturnLength:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5, 3}, enc.InputIDs)
	assert.Equal(t, []int{0, 0, 0, 0}, enc.TokenTypeIDs)
	assert.Equal(t, 4, enc.Length)
	assert.Equal(t, -1, enc.OverflowToSample)
}

func TestEncodeSinglePair(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	enc, err := tok.EncodeSingle(Sequence{Text: "a b"}, &Sequence{Text: "c d"}, EncodeOptions{
		AddSpecialTokens:        true,
		ReturnTokenTypeIDs:      true,
		ReturnSpecialTokensMask: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5, 3, 6, 7, 3}, enc.InputIDs)
	assert.Equal(t, []int{0, 0, 0, 0, 1, 1, 1}, enc.TokenTypeIDs)
	assert.Equal(t, []int{1, 0, 0, 1, 0, 0, 1}, enc.SpecialTokensMask)
}

func TestEncodeSingleNoSpecials(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	enc, err := tok.EncodeSingle(Sequence{Text: "a b c"}, nil, EncodeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5, 6}, enc.InputIDs)
	assert.Nil(t, enc.TokenTypeIDs)
	assert.Nil(t, enc.AttentionMask)
}

func TestEncodeInputKinds(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	fromText, err := tok.EncodeSingle(Sequence{Text: "a b"}, nil, EncodeOptions{})
	require.NoError(t, err)
	fromWords, err := tok.EncodeSingle(Sequence{Words: []string{"a", "b"}}, nil, EncodeOptions{})
	require.NoError(t, err)
	fromIDs, err := tok.EncodeSingle(Sequence{IDs: []int{4, 5}}, nil, EncodeOptions{})
	require.NoError(t, err)

	assert.Equal(t, fromText.InputIDs, fromWords.InputIDs)
	assert.Equal(t, fromText.InputIDs, fromIDs.InputIDs)
}

func TestEncodeSequenceValidation(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	_, err := tok.EncodeSingle(Sequence{}, nil, EncodeOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = tok.EncodeSingle(Sequence{Text: "a", IDs: []int{4}}, nil, EncodeOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEncodeTokenTypeIDsRequireSpecials(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	_, err := tok.EncodeSingle(Sequence{Text: "a"}, nil, EncodeOptions{ReturnTokenTypeIDs: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEncodeTruncation(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	enc, err := tok.EncodeSingle(Sequence{Text: "a b c d e"}, nil, EncodeOptions{
		AddSpecialTokens:        true,
		Truncation:              TruncateLongestFirst,
		MaxLength:               4,
		ReturnOverflowingTokens: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5, 3}, enc.InputIDs)
	assert.Equal(t, []int{8, 7, 6}, enc.OverflowingTokens)
}

func TestEncodeBatchPadToLongest(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	batch, err := tok.EncodeBatch([]SequencePair{
		{First: Sequence{Text: "a b"}},
		{First: Sequence{Text: "a b c d"}},
	}, EncodeOptions{
		Padding:             PadToLongest,
		ReturnAttentionMask: true,
	})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, []int{4, 5, 1, 1}, batch[0].InputIDs)
	assert.Equal(t, []int{4, 5, 6, 7}, batch[1].InputIDs)
	assert.Equal(t, []int{1, 1, 0, 0}, batch[0].AttentionMask)
	assert.Equal(t, []int{1, 1, 1, 1}, batch[1].AttentionMask)
}

func TestEncodePadToMaxLength(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	enc, err := tok.EncodeSingle(Sequence{Text: "a b"}, nil, EncodeOptions{
		AddSpecialTokens:        true,
		Padding:                 PadToMaxLength,
		MaxLength:               8,
		ReturnAttentionMask:     true,
		ReturnTokenTypeIDs:      true,
		ReturnSpecialTokensMask: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 5, 3, 1, 1, 1, 1}, enc.InputIDs)
	assert.Equal(t, []int{1, 1, 1, 1, 0, 0, 0, 0}, enc.AttentionMask)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0, 0}, enc.TokenTypeIDs)
	assert.Equal(t, []int{1, 0, 0, 1, 1, 1, 1, 1}, enc.SpecialTokensMask)
}

func TestEncodePadToMultipleOf(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	batch, err := tok.EncodeBatch([]SequencePair{
		{First: Sequence{Text: "a b c"}},
	}, EncodeOptions{
		Padding:         PadToLongest,
		PadToMultipleOf: 8,
	})
	require.NoError(t, err)
	assert.Len(t, batch[0].InputIDs, 8)
}

func TestEncodePadRequiresMaxLength(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	_, err := tok.EncodeSingle(Sequence{Text: "a"}, nil, EncodeOptions{Padding: PadToMaxLength})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEncodePadRequiresPadToken(t *testing.T) {
	v, err := vocab.New([]string{"[UNK]", "a"}, "[UNK]")
	require.NoError(t, err)
	tok, err := New(v, Whitespace{}, Config{UnkToken: "[UNK]"})
	require.NoError(t, err)

	_, err = tok.EncodeSingle(Sequence{Text: "a"}, nil, EncodeOptions{
		Padding:   PadToMaxLength,
		MaxLength: 4,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEncodeBatchSlidingWindow(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	// First sequence has 2 ids, second 8; with MaxLength 6 and no special
	// tokens every window holds 4 ids of the second sequence and consecutive
	// windows advance by 2.
	batch, err := tok.EncodeBatch([]SequencePair{
		{
			First:  Sequence{IDs: []int{4, 5}},
			Second: &Sequence{IDs: []int{6, 7, 8, 9, 10, 11, 6, 7}},
		},
	}, EncodeOptions{
		MaxLength: 6,
		Stride:    2,
	})
	require.NoError(t, err)
	require.Len(t, batch, 3)

	assert.Equal(t, []int{4, 5, 6, 7, 8, 9}, batch[0].InputIDs)
	assert.Equal(t, []int{4, 5, 8, 9, 10, 11}, batch[1].InputIDs)
	assert.Equal(t, []int{4, 5, 10, 11, 6, 7}, batch[2].InputIDs)
	for _, enc := range batch {
		assert.Equal(t, 0, enc.OverflowToSample)
	}
}

func TestEncodeBatchSlidingWindowWithSpecials(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	batch, err := tok.EncodeBatch([]SequencePair{
		{
			First:  Sequence{IDs: []int{4}},
			Second: &Sequence{IDs: []int{6, 7, 8, 9}},
		},
	}, EncodeOptions{
		AddSpecialTokens: true,
		MaxLength:        7,
		Stride:           1,
	})
	require.NoError(t, err)
	// Budget for the second sequence: 7 - 1 - 3 = 3. Windows advance by the
	// stride, so the second window overlaps the first.
	require.Len(t, batch, 2)
	assert.Equal(t, []int{2, 4, 3, 6, 7, 8, 3}, batch[0].InputIDs)
	assert.Equal(t, []int{2, 4, 3, 7, 8, 9, 3}, batch[1].InputIDs)
}

func TestEncodeBatchSlidingWindowNoRoom(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	_, err := tok.EncodeBatch([]SequencePair{
		{
			First:  Sequence{IDs: []int{4, 5, 6, 7}},
			Second: &Sequence{IDs: []int{6, 7}},
		},
	}, EncodeOptions{MaxLength: 4, Stride: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestTruncateSequencesLongestFirst(t *testing.T) {
	ids, pairIDs, overflowing, err := TruncateSequences(
		[]int{1, 2, 3, 4, 5}, []int{6, 7}, 3, TruncateLongestFirst, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)
	assert.Equal(t, []int{6, 7}, pairIDs)
	assert.Equal(t, []int{5, 4, 3}, overflowing)
}

func TestTruncateSequencesOnlySecond(t *testing.T) {
	ids, pairIDs, overflowing, err := TruncateSequences(
		[]int{1, 2}, []int{6, 7, 8, 9, 10}, 2, TruncateOnlySecond, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)
	assert.Equal(t, []int{6, 7, 8}, pairIDs)
	// Overflow keeps one stride element of overlap.
	assert.Equal(t, []int{8, 9, 10}, overflowing)
}

func TestTruncateSequencesOnlyFirstTooShort(t *testing.T) {
	_, _, _, err := TruncateSequences([]int{1, 2}, []int{6}, 2, TruncateOnlyFirst, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestTruncateSequencesNoop(t *testing.T) {
	ids, pairIDs, overflowing, err := TruncateSequences([]int{1}, []int{2}, 0, TruncateLongestFirst, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids)
	assert.Equal(t, []int{2}, pairIDs)
	assert.Nil(t, overflowing)
}

func TestNumSpecialTokensToAdd(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())
	assert.Equal(t, 2, tok.NumSpecialTokensToAdd(false))
	assert.Equal(t, 3, tok.NumSpecialTokensToAdd(true))

	plain := newEncodeTokenizer(t, nil)
	assert.Equal(t, 0, plain.NumSpecialTokensToAdd(false))
}

func TestGetSpecialTokensMask(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	mask, err := tok.GetSpecialTokensMask([]int{4, 5}, []int{6}, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0, 1, 0, 1}, mask)

	mask, err = tok.GetSpecialTokensMask([]int{2, 4, 5, 3}, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0, 1}, mask)

	_, err = tok.GetSpecialTokensMask([]int{2, 4, 3}, []int{6}, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEncodeOffsets(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	enc, err := tok.EncodeSingle(Sequence{Text: "a b"}, nil, EncodeOptions{
		AddSpecialTokens: true,
		ReturnOffsets:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, []Span{{}, {0, 1}, {2, 3}, {}}, enc.OffsetMapping)
}

func TestEncodePositionIDs(t *testing.T) {
	tok := newEncodeTokenizer(t, bertBuilder())

	enc, err := tok.EncodeSingle(Sequence{Text: "a b c"}, nil, EncodeOptions{ReturnPositionIDs: true})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, enc.PositionIDs)
}
