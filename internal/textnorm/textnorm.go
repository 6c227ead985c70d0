// Package textnorm turns free resume and job description text into a canonical
// lowercase token stream that the skill matcher and the vectorizer share.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9+.]`)
	spaces     = regexp.MustCompile(`\s+`)
)

// stopwords is a compact closed set of English function words.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {},
	"in": {}, "on": {}, "at": {}, "for": {}, "to": {},
	"of": {}, "with": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "be": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "as": {}, "by": {}, "from": {}, "it": {},
	"its": {}, "you": {}, "your": {}, "we": {}, "our": {},
}

// Options controls the two independent normalization steps.
type Options struct {
	Lowercase       bool
	RemoveStopwords bool
}

// DefaultOptions enables lowercasing and stopword removal.
var DefaultOptions = Options{Lowercase: true, RemoveStopwords: true}

// Clean lowercases (optionally), replaces every character outside [a-z0-9+.]
// with a space, drops stopwords (optionally) and rejoins the tokens with single spaces.
//
// Without Lowercase, uppercase letters fall outside the kept class and are
// replaced as well.
func Clean(text string, opts Options) string {
	if opts.Lowercase {
		text = strings.ToLower(text)
	}

	text = disallowed.ReplaceAllString(text, " ")

	tokens := Tokenize(text)
	if opts.RemoveStopwords {
		kept := tokens[:0]
		for _, t := range tokens {
			if IsStopword(t) {
				continue
			}
			kept = append(kept, t)
		}
		tokens = kept
	}

	return NormalizeWhitespace(strings.Join(tokens, " "))
}

// Normalize is Clean with DefaultOptions.
func Normalize(text string) string {
	return Clean(text, DefaultOptions)
}

// NormalizeWhitespace collapses whitespace runs into single spaces and trims the result.
func NormalizeWhitespace(text string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(text, " "))
}

// Tokenize splits already normalized text on whitespace.
func Tokenize(normalized string) []string {
	return strings.Fields(normalized)
}

// IsStopword reports whether token belongs to the stopword set.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
