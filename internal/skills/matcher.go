package skills

import (
	"sort"
	"strings"

	"github.com/spigell/resume-ranker/internal/textnorm"
)

// Matcher finds vocabulary terms in text. It is built once per scoring session
// from the resolved vocabulary and reused for every document.
//
// A term matches where it occurs literally (case-insensitive) and the
// characters right before and after it are not letters, digits, '+', '.' or '#'.
// So "java" is rejected inside "javascript" but accepted in "java-based";
// close variants separated by other punctuation are expected matches.
// Whitespace runs in the text count as one space, so "machine\nlearning"
// matches "machine learning".
type Matcher struct {
	terms []string
}

// NewMatcher case-folds, trims and deduplicates vocab.
func NewMatcher(vocab []string) *Matcher {
	seen := make(map[string]struct{}, len(vocab))
	terms := make([]string, 0, len(vocab))
	for _, term := range vocab {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	sort.Strings(terms)

	return &Matcher{terms: terms}
}

// Len is the vocabulary size.
func (m *Matcher) Len() int {
	return len(m.terms)
}

// Extract returns the sorted terms present in text.
func (m *Matcher) Extract(text string) []string {
	found := make([]string, 0)
	if m == nil || text == "" {
		return found
	}

	hay := textnorm.NormalizeWhitespace(strings.ToLower(text))
	for _, term := range m.terms {
		if containsBounded(hay, term) {
			found = append(found, term)
		}
	}
	return found
}

func containsBounded(hay, term string) bool {
	if term == "" {
		return false
	}

	offset := 0
	for {
		idx := strings.Index(hay[offset:], term)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(term)

		if (start == 0 || !isBoundaryByte(hay[start-1])) && (end == len(hay) || !isBoundaryByte(hay[end])) {
			return true
		}
		offset = start + 1
	}
}

func isBoundaryByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '+', b == '.', b == '#':
		return true
	default:
		return false
	}
}
