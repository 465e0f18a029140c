// Package vocab implements the base token↔id vocabulary and its on-disk
// format: a UTF-8 text file with one token per line, where a token's id is
// its 0-based line number.
package vocab

import (
	"strings"

	"github.com/pkg/errors"
)

// Vocab is an immutable dense vocabulary: ids cover [0, Size()) with no gaps.
// Tokens added after construction live in the tokenizer's overlay, not here.
type Vocab struct {
	tokenToID map[string]int
	idToToken []string

	unkToken string
	unkID    int // -1 when no unknown token is configured
}

// New builds a vocabulary from tokens, assigning each its index as id.
// unkToken is the unknown-token placeholder used by ToID as fallback; pass ""
// when the vocabulary has none.
func New(tokens []string, unkToken string) (*Vocab, error) {
	v := &Vocab{
		tokenToID: make(map[string]int, len(tokens)),
		idToToken: make([]string, len(tokens)),
		unkToken:  unkToken,
		unkID:     -1,
	}
	for i, tok := range tokens {
		if _, ok := v.tokenToID[tok]; ok {
			return nil, errors.Errorf("duplicate token %q at index %d", tok, i)
		}
		v.tokenToID[tok] = i
		v.idToToken[i] = tok
	}
	if unkToken != "" {
		id, ok := v.tokenToID[unkToken]
		if !ok {
			return nil, errors.Errorf("unknown-token placeholder %q is not in the vocabulary", unkToken)
		}
		v.unkID = id
	}
	return v, nil
}

// FromMap builds a vocabulary from a token→id map. Ids must be dense in
// [0, len(m)).
func FromMap(m map[string]int, unkToken string) (*Vocab, error) {
	tokens := make([]string, len(m))
	seen := make([]bool, len(m))
	for tok, id := range m {
		if id < 0 || id >= len(m) {
			return nil, errors.Errorf("token %q has id %d outside the dense range [0, %d)", tok, id, len(m))
		}
		if seen[id] {
			return nil, errors.Errorf("id %d is assigned to more than one token", id)
		}
		seen[id] = true
		tokens[id] = tok
	}
	return New(tokens, unkToken)
}

// Size returns the number of tokens in the base vocabulary.
func (v *Vocab) Size() int {
	return len(v.idToToken)
}

// Lookup returns the id of token, without unknown-token fallback.
func (v *Vocab) Lookup(token string) (int, bool) {
	id, ok := v.tokenToID[token]
	return id, ok
}

// ToID returns the id of token, falling back to the unknown-token id when the
// token is not in the vocabulary. Returns -1 for unknown tokens when no
// unknown token is configured.
func (v *Vocab) ToID(token string) int {
	if id, ok := v.tokenToID[token]; ok {
		return id
	}
	return v.unkID
}

// ToToken returns the token with the given id.
func (v *Vocab) ToToken(id int) (string, bool) {
	if id < 0 || id >= len(v.idToToken) {
		return "", false
	}
	return v.idToToken[id], true
}

// UnkToken returns the unknown-token placeholder, or "" when none is
// configured.
func (v *Vocab) UnkToken() string {
	return v.unkToken
}

// UnkID returns the id of the unknown-token placeholder, or -1 when none is
// configured.
func (v *Vocab) UnkID() int {
	return v.unkID
}

// Tokens returns all tokens ordered by ascending id. The returned slice is a
// copy.
func (v *Vocab) Tokens() []string {
	out := make([]string, len(v.idToToken))
	copy(out, v.idToToken)
	return out
}

// parseTokens splits file content into one token per line. Only the line
// separator itself is stripped, so tokens may legitimately carry leading or
// trailing spaces; a trailing newline does not produce a final empty token.
func parseTokens(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.Split(s, "\n")
}
