// Package trie implements the multi-pattern matcher used to isolate no-split
// tokens before sub-word tokenization.
package trie

import "unicode/utf8"

// Trie holds a set of marker strings as a prefix tree. The zero value is not
// usable; create instances with New.
type Trie struct {
	root *node
}

type node struct {
	children map[rune]*node
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[rune]*node)}
}

// New returns an empty Trie.
func New() *Trie {
	return &Trie{root: newNode()}
}

// Add inserts word into the trie. Empty words are ignored: an empty marker
// would match everywhere.
func (t *Trie) Add(word string) {
	if word == "" {
		return
	}
	n := t.root
	for _, r := range word {
		child, ok := n.children[r]
		if !ok {
			child = newNode()
			n.children[r] = child
		}
		n = child
	}
	n.terminal = true
}

// match is a partial match anchored at start (byte offset) whose node was
// reached by consuming every rune since start.
type match struct {
	start int
	node  *node
}

// Split cuts text into fragments such that every occurrence of a marker is
// isolated as its own fragment and all other text is preserved verbatim in
// between. Concatenating the fragments reproduces text exactly; empty
// unmatched runs are omitted.
//
// The scan is a single left-to-right pass tracking the set of active partial
// matches. The first match to complete commits immediately (active matches
// are kept in start order, so a tie at the same position resolves to the
// earliest start) and resets all active state; no character is revisited once
// committed past.
func (t *Trie) Split(text string) []string {
	var out []string
	var active []match
	lastEmit := 0

	for i := 0; i < len(text); {
		r, width := utf8.DecodeRuneInString(text[i:])

		// Advance active matches, dropping the ones with no transition.
		kept := active[:0]
		for _, m := range active {
			if child, ok := m.node.children[r]; ok {
				m.node = child
				kept = append(kept, m)
			}
		}
		active = kept

		// Start a new partial match anchored at the current position.
		if child, ok := t.root.children[r]; ok {
			active = append(active, match{start: i, node: child})
		}

		// Commit the earliest-starting completed match, if any.
		for _, m := range active {
			if m.node.terminal {
				if m.start > lastEmit {
					out = append(out, text[lastEmit:m.start])
				}
				out = append(out, text[m.start:i+width])
				lastEmit = i + width
				active = active[:0]
				break
			}
		}

		i += width
	}

	if len(text) > lastEmit {
		out = append(out, text[lastEmit:])
	}
	return out
}
