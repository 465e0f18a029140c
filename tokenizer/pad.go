package tokenizer

// Pad pads every encoding in the batch to a common length according to
// opts.Padding, extending whichever optional fields each encoding already
// carries. Attention masks are created (when requested) even under NoPadding
// so callers always get a mask aligned with InputIDs.
//
// Padding appends on the right: the pad token id to InputIDs, 0 to
// TokenTypeIDs and AttentionMask, 1 to SpecialTokensMask, and the zero Span
// to OffsetMapping.
func (t *Tokenizer) Pad(batch []*Encoding, opts EncodeOptions) error {
	target := 0
	switch opts.Padding {
	case NoPadding:
		// Masks only, below.
	case PadToMaxLength:
		target = opts.MaxLength
	case PadToLongest:
		for _, enc := range batch {
			if len(enc.InputIDs) > target {
				target = len(enc.InputIDs)
			}
		}
	}
	if target > 0 && opts.PadToMultipleOf > 0 && target%opts.PadToMultipleOf != 0 {
		target = (target/opts.PadToMultipleOf + 1) * opts.PadToMultipleOf
	}

	for _, enc := range batch {
		n := target - len(enc.InputIDs)
		if n < 0 {
			n = 0
		}
		if opts.ReturnAttentionMask && enc.AttentionMask == nil {
			enc.AttentionMask = make([]int, len(enc.InputIDs))
			for i := range enc.AttentionMask {
				enc.AttentionMask[i] = 1
			}
		}
		if n == 0 {
			continue
		}

		padID := t.padID()
		if padID < 0 {
			return wrapInvalidf("padding to length %d requires a pad token, but none is configured", target)
		}
		for i := 0; i < n; i++ {
			enc.InputIDs = append(enc.InputIDs, padID)
		}
		if enc.TokenTypeIDs != nil {
			enc.TokenTypeIDs = append(enc.TokenTypeIDs, make([]int, n)...)
		}
		if enc.AttentionMask != nil {
			enc.AttentionMask = append(enc.AttentionMask, make([]int, n)...)
		}
		if enc.SpecialTokensMask != nil {
			for i := 0; i < n; i++ {
				enc.SpecialTokensMask = append(enc.SpecialTokensMask, 1)
			}
		}
		if enc.OffsetMapping != nil {
			enc.OffsetMapping = append(enc.OffsetMapping, make([]Span, n)...)
		}
		if enc.PositionIDs != nil {
			enc.PositionIDs = append(enc.PositionIDs, make([]int, n)...)
		}
	}
	return nil
}

// padID returns the id of the configured pad token, or -1 when there is none.
func (t *Tokenizer) padID() int {
	if t.config.PadToken == "" {
		return -1
	}
	return t.TokenToID(t.config.PadToken)
}
