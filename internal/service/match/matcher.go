package match

import (
	"errors"
	"fmt"

	"TickerPulse/internal/domain/models"
)

// ErrEmptyLexicon is returned when a matcher is built from zero entries.
var ErrEmptyLexicon = errors.New("match: lexicon is empty")

// Matcher finds every lexicon symbol in free-form text in one pass. It is a
// trie keyed on word-boundary scanning instead of a large regex alternation:
// candidate positions are word starts, a hit requires a word boundary on
// both sides, and the "$"-prefix rule is a scan-state check. Matching is
// case-sensitive; build once per run and reuse.
type Matcher struct {
	root *node
	size int
}

type node struct {
	children map[byte]*node
	entry    *models.SymbolEntry // set on terminal nodes
}

// NewMatcher compiles the lexicon into a matcher. Fails fast on an empty
// lexicon or blank symbols; duplicate symbols keep the first entry, matching
// the lexicon loader's dedupe contract.
func NewMatcher(lexicon []models.SymbolEntry) (*Matcher, error) {
	if len(lexicon) == 0 {
		return nil, ErrEmptyLexicon
	}
	m := &Matcher{root: &node{}}
	for i := range lexicon {
		e := &lexicon[i]
		if e.Symbol == "" {
			return nil, fmt.Errorf("match: blank symbol for company %q", e.Company)
		}
		m.insert(e)
	}
	return m, nil
}

// Size returns the number of distinct symbols compiled in.
func (m *Matcher) Size() int { return m.size }

func (m *Matcher) insert(e *models.SymbolEntry) {
	n := m.root
	for i := 0; i < len(e.Symbol); i++ {
		c := e.Symbol[i]
		if n.children == nil {
			n.children = make(map[byte]*node)
		}
		child, ok := n.children[c]
		if !ok {
			child = &node{}
			n.children[c] = child
		}
		n = child
	}
	if n.entry == nil {
		n.entry = e
		m.size++
	}
}

// Extract scans text once and returns per-symbol occurrence counts. Empty
// text yields an empty map. A matched span is consumed, so the same
// characters are never counted twice. Symbols flagged RequiresDollar only
// count when a literal '$' sits immediately before the symbol and the '$'
// itself is at a word boundary.
func (m *Matcher) Extract(text string) map[string]int {
	found := make(map[string]int)
	n := len(text)
	i := 0
	for i < n {
		if !isWordByte(text[i]) {
			i++
			continue
		}
		// Word start only: inside a word no boundary exists, skip the run.
		if i > 0 && isWordByte(text[i-1]) {
			i = skipWord(text, i)
			continue
		}
		dollar := i > 0 && text[i-1] == '$' && (i == 1 || !isWordByte(text[i-2]))
		if entry, end := m.matchAt(text, i); entry != nil {
			if !entry.RequiresDollar || dollar {
				found[entry.Symbol]++
			}
			i = end
			continue
		}
		i = skipWord(text, i)
	}
	return found
}

// matchAt walks the trie from position i and returns the deepest terminal
// whose end lands on a word boundary. Boundaries do the disambiguation: for
// overlapping symbols like AB and ABC over "ABC", only ABC ends on a
// boundary, so only exact-length matches count.
func (m *Matcher) matchAt(text string, i int) (*models.SymbolEntry, int) {
	var entry *models.SymbolEntry
	end := i
	n := m.root
	for j := i; j < len(text); j++ {
		child, ok := n.children[text[j]]
		if !ok {
			break
		}
		n = child
		if n.entry != nil && (j+1 == len(text) || !isWordByte(text[j+1])) {
			entry = n.entry
			end = j + 1
		}
	}
	return entry, end
}

func skipWord(text string, i int) int {
	for i < len(text) && isWordByte(text[i]) {
		i++
	}
	return i
}

// isWordByte reports whether c can be part of a word for boundary purposes.
// Bytes above ASCII are treated as word constituents so multi-byte runes
// never create false boundaries inside a word.
func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c >= 0x80
}
