// Package tokenizer implements a sub-word tokenization engine: it turns raw
// text into tokens and ids while keeping a configurable set of special tokens
// atomic, reconstructs the original-text character span of every token, and
// assembles single and batched encodings with truncation, sliding-window
// overflow and padding.
//
// The concrete sub-word scheme is pluggable through the SubTokenizer
// interface; see the wordpiece and sentencepiece packages for
// implementations.
package tokenizer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/go-tokenizer/trie"
	"github.com/gomlx/go-tokenizer/vocab"
)

// AddedToken is a special or extra token together with its whitespace
// absorption behavior when found embedded in text: RStrip makes the token eat
// the whitespace on its right, LStrip the whitespace on its left.
type AddedToken struct {
	Content    string
	SingleWord bool
	LStrip     bool
	RStrip     bool
	Normalized bool
}

// Config enumerates every special-token field plus the tokenizer behavior
// switches. It is consumed once by New; changing it afterwards has no effect.
type Config struct {
	UnkToken  string
	PadToken  string
	BosToken  string
	EosToken  string
	ClsToken  string
	SepToken  string
	MaskToken string

	// AdditionalSpecialTokens are extra special tokens with explicit
	// stripping metadata. Special tokens registered as plain strings through
	// AddTokens get the default both-sides stripping instead.
	AdditionalSpecialTokens []AddedToken

	// DoLowerCase lower-cases input text, except inside no-split and special
	// tokens.
	DoLowerCase bool

	// StripAccents controls accent removal in the offset-mapping
	// normalization. nil means "strip when DoLowerCase is set", matching the
	// historical behavior of lower-cased vocabularies.
	StripAccents *bool

	// PreTokenize is the model-specific pre-tokenization hook run before
	// anything else; nil means identity.
	PreTokenize func(string) string

	// CleanUp post-processes decoded text; nil selects CleanUpTokenization.
	CleanUp func(string) string

	// Builder assembles sequences with special tokens; nil selects a builder
	// that adds none.
	Builder SequenceBuilder
}

// Tokenizer owns the vocabulary overlay, the no-split token set and its trie,
// and the configuration. Tokenization methods are safe for concurrent use
// once the instance is fully built; AddTokens mutates the instance and
// requires external synchronization (single writer, multiple readers once
// stable).
type Tokenizer struct {
	vocab   *vocab.Vocab
	sub     SubTokenizer
	config  Config
	builder SequenceBuilder

	addedTokensEncoder  map[string]int
	addedTokensDecoder  map[int]string
	uniqueNoSplitTokens []string // sorted, deduplicated
	tokensTrie          *trie.Trie

	specialTokens   []string // registration order
	specialSet      map[string]bool
	specialExtended map[string]AddedToken
}

// New builds a tokenizer over the given base vocabulary and sub-word scheme.
// Every special token named in config is registered: tokens unknown to the
// base vocabulary enter the overlay, and all of them enter the no-split set.
func New(v *vocab.Vocab, sub SubTokenizer, config Config) (*Tokenizer, error) {
	if v == nil {
		return nil, errors.Errorf("vocabulary must not be nil")
	}
	if sub == nil {
		return nil, errors.Errorf("sub-tokenizer must not be nil")
	}
	t := &Tokenizer{
		vocab:              v,
		sub:                sub,
		config:             config,
		builder:            config.Builder,
		addedTokensEncoder: make(map[string]int),
		addedTokensDecoder: make(map[int]string),
		tokensTrie:         trie.New(),
		specialSet:         make(map[string]bool),
		specialExtended:    make(map[string]AddedToken),
	}
	if t.builder == nil {
		t.builder = noSpecialsBuilder{}
	}

	var specials []string
	for _, tok := range []string{
		config.UnkToken, config.PadToken, config.BosToken, config.EosToken,
		config.ClsToken, config.SepToken, config.MaskToken,
	} {
		if tok != "" {
			specials = append(specials, tok)
		}
	}
	for _, at := range config.AdditionalSpecialTokens {
		if at.Content == "" {
			return nil, errors.Errorf("additional special token with empty content")
		}
		specials = append(specials, at.Content)
		t.specialExtended[at.Content] = at
	}
	t.AddTokens(specials, true)
	return t, nil
}

// Len returns the size of the full vocabulary: base plus added tokens.
func (t *Tokenizer) Len() int {
	return t.vocab.Size() + len(t.addedTokensEncoder)
}

// Vocab returns the base vocabulary.
func (t *Tokenizer) Vocab() *vocab.Vocab { return t.vocab }

// GetAddedVocab returns a copy of the overlay: tokens added after the base
// vocabulary was built, mapped to their ids.
func (t *Tokenizer) GetAddedVocab() map[string]int {
	out := make(map[string]int, len(t.addedTokensEncoder))
	for tok, id := range t.addedTokensEncoder {
		out[tok] = id
	}
	return out
}

// AllSpecialTokens returns every registered special token, in registration
// order.
func (t *Tokenizer) AllSpecialTokens() []string {
	out := make([]string, len(t.specialTokens))
	copy(out, t.specialTokens)
	return out
}

// AllSpecialIDs returns the ids of every registered special token.
func (t *Tokenizer) AllSpecialIDs() []int {
	out := make([]int, 0, len(t.specialTokens))
	for _, tok := range t.specialTokens {
		out = append(out, t.TokenToID(tok))
	}
	return out
}

func (t *Tokenizer) unkToken() string {
	if t.config.UnkToken != "" {
		return t.config.UnkToken
	}
	return t.vocab.UnkToken()
}

// isKnown reports whether token resolves to a non-unknown id, in either the
// overlay or the base vocabulary.
func (t *Tokenizer) isKnown(token string) bool {
	if _, ok := t.addedTokensEncoder[token]; ok {
		return true
	}
	_, ok := t.vocab.Lookup(token)
	return ok
}

// AddTokens adds new tokens to the vocabulary overlay, assigning them
// sequential ids past the current full vocabulary size, and returns how many
// were actually added. Tokens equal to the unknown-token placeholder or
// already resolvable to a non-unknown id are skipped.
//
// Special tokens always enter the no-split set, even when already in the
// vocabulary; non-special tokens enter it only when newly added. Either way
// the no-split trie is rebuilt.
func (t *Tokenizer) AddTokens(newTokens []string, special bool) int {
	var toAdd []string
	for _, tok := range newTokens {
		if tok == "" {
			continue
		}
		if !special && t.config.DoLowerCase {
			tok = strings.ToLower(tok)
		}
		if tok == t.unkToken() || t.isKnown(tok) || containsString(toAdd, tok) {
			continue
		}
		toAdd = append(toAdd, tok)
		klog.V(1).Infof("Adding %q to the vocabulary", tok)
	}

	base := t.Len()
	for i, tok := range toAdd {
		t.addedTokensEncoder[tok] = base + i
		t.addedTokensDecoder[base+i] = tok
	}

	if special {
		for _, tok := range newTokens {
			if tok == "" {
				continue
			}
			t.insertNoSplit(tok)
			if !t.specialSet[tok] {
				t.specialSet[tok] = true
				t.specialTokens = append(t.specialTokens, tok)
			}
		}
	} else {
		for _, tok := range toAdd {
			t.insertNoSplit(tok)
		}
	}
	t.rebuildTrie()

	return len(toAdd)
}

// insertNoSplit inserts token into the ordered no-split list if absent.
func (t *Tokenizer) insertNoSplit(token string) {
	i := sort.SearchStrings(t.uniqueNoSplitTokens, token)
	if i < len(t.uniqueNoSplitTokens) && t.uniqueNoSplitTokens[i] == token {
		return
	}
	t.uniqueNoSplitTokens = append(t.uniqueNoSplitTokens, "")
	copy(t.uniqueNoSplitTokens[i+1:], t.uniqueNoSplitTokens[i:])
	t.uniqueNoSplitTokens[i] = token
}

// rebuildTrie mirrors the no-split set into a fresh trie. Under DoLowerCase
// non-special tokens are stored lower-cased, matching how the input text is
// folded before splitting.
func (t *Tokenizer) rebuildTrie() {
	tr := trie.New()
	for _, tok := range t.uniqueNoSplitTokens {
		if t.config.DoLowerCase && !t.specialSet[tok] {
			tr.Add(strings.ToLower(tok))
		} else {
			tr.Add(tok)
		}
	}
	t.tokensTrie = tr
}

// Tokenize converts text into a sequence of sub-word tokens, keeping no-split
// tokens atomic and applying their whitespace stripping behavior.
func (t *Tokenizer) Tokenize(text string) []string {
	return t.tokenizePipeline(text, t.sub.TokenizeWord)
}

// tokenizePipeline runs the shared tokenization stages, delegating plain
// fragments to tokenizeFrag.
func (t *Tokenizer) tokenizePipeline(text string, tokenizeFrag func(string) []string) []string {
	if t.config.PreTokenize != nil {
		text = t.config.PreTokenize(text)
	}
	if t.config.DoLowerCase {
		text = t.lowerExceptProtected(text)
	}

	noSplit := make(map[string]bool, len(t.uniqueNoSplitTokens))
	for _, tok := range t.uniqueNoSplitTokens {
		noSplit[tok] = true
	}

	fragments := t.tokensTrie.Split(text)

	// A no-split token eats neighboring whitespace according to its
	// stripping metadata; without metadata it strips both sides.
	for i, frag := range fragments {
		if !noSplit[frag] {
			continue
		}
		ext, hasExt := t.specialExtended[frag]
		stripRight := !hasExt || ext.RStrip
		stripLeft := !hasExt || ext.LStrip
		if stripRight && i+1 < len(fragments) {
			fragments[i+1] = strings.TrimLeftFunc(fragments[i+1], unicode.IsSpace)
		}
		if stripLeft && i > 0 {
			fragments[i-1] = strings.TrimRightFunc(fragments[i-1], unicode.IsSpace)
		}
	}

	var out []string
	for _, frag := range fragments {
		if frag == "" {
			// Fully stripped fragments disappear.
			continue
		}
		if noSplit[frag] {
			out = append(out, frag)
		} else {
			out = append(out, tokenizeFrag(frag)...)
		}
	}
	return out
}

// lowerExceptProtected lower-cases text, leaving occurrences of no-split and
// special tokens untouched. Longer protected tokens win over shorter ones at
// the same position.
func (t *Tokenizer) lowerExceptProtected(text string) string {
	protected := make([]string, 0, len(t.uniqueNoSplitTokens)+len(t.specialTokens))
	protected = append(protected, t.uniqueNoSplitTokens...)
	for _, tok := range t.specialTokens {
		if !containsString(protected, tok) {
			protected = append(protected, tok)
		}
	}
	sort.Slice(protected, func(i, j int) bool { return len(protected[i]) > len(protected[j]) })

	var out strings.Builder
	out.Grow(len(text))
	for i := 0; i < len(text); {
		matched := ""
		for _, p := range protected {
			if strings.HasPrefix(text[i:], p) {
				matched = p
				break
			}
		}
		if matched != "" {
			out.WriteString(matched)
			i += len(matched)
			continue
		}
		r, w := utf8.DecodeRuneInString(text[i:])
		out.WriteRune(unicode.ToLower(r))
		i += w
	}
	return out.String()
}

// TokenToID returns the id of token: overlay first, then base vocabulary,
// then the unknown-token id (-1 when no unknown token is configured).
func (t *Tokenizer) TokenToID(token string) int {
	if id, ok := t.addedTokensEncoder[token]; ok {
		return id
	}
	return t.vocab.ToID(token)
}

// ConvertTokensToIDs maps each token through TokenToID.
func (t *Tokenizer) ConvertTokensToIDs(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = t.TokenToID(tok)
	}
	return ids
}

// IDToToken returns the token with the given id: overlay inverse first, then
// base vocabulary. Returns "" for out-of-range ids.
func (t *Tokenizer) IDToToken(id int) string {
	if tok, ok := t.addedTokensDecoder[id]; ok {
		return tok
	}
	tok, _ := t.vocab.ToToken(id)
	return tok
}

// ConvertIDsToTokens maps ids back to tokens, optionally dropping special
// tokens.
func (t *Tokenizer) ConvertIDsToTokens(ids []int, skipSpecialTokens bool) []string {
	var specialIDs map[int]bool
	if skipSpecialTokens {
		specialIDs = make(map[int]bool, len(t.specialTokens))
		for _, id := range t.AllSpecialIDs() {
			specialIDs[id] = true
		}
	}
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		if skipSpecialTokens && specialIDs[id] {
			continue
		}
		tokens = append(tokens, t.IDToToken(id))
	}
	return tokens
}

// ConvertTokensToString joins tokens into a single string using the
// sub-tokenizer's detokenization.
func (t *Tokenizer) ConvertTokensToString(tokens []string) string {
	return t.sub.Detokenize(tokens)
}

func containsString(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
