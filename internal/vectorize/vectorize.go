// Package vectorize builds TF-IDF document vectors over a vocabulary that is
// derived jointly from the whole corpus at call time.
package vectorize

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// DefaultMaxFeatures caps the vocabulary size.
	DefaultMaxFeatures = 5000
)

// ErrEmptyCorpus is returned when there is nothing to vectorize.
var ErrEmptyCorpus = errors.New("empty corpus")

// Matrix holds one row per corpus document and one column per vocabulary term.
// Terms are in the column order used by every row.
type Matrix struct {
	Terms []string
	Rows  [][]float64
}

// Dims returns rows and columns.
func (m *Matrix) Dims() (int, int) {
	return len(m.Rows), len(m.Terms)
}

// Row returns the i-th document vector.
func (m *Matrix) Row(i int) []float64 {
	return m.Rows[i]
}

// Vectorizer converts normalized documents into a TF-IDF matrix.
// It keeps no state between FitTransform calls.
type Vectorizer struct {
	maxFeatures int
	minN        int
	maxN        int
}

// Option configures a Vectorizer.
type Option func(*Vectorizer)

// WithMaxFeatures overrides the vocabulary cap. Non-positive values mean no cap.
func WithMaxFeatures(n int) Option {
	return func(v *Vectorizer) {
		v.maxFeatures = n
	}
}

// WithNGramRange sets the inclusive n-gram range. Invalid ranges are ignored.
func WithNGramRange(minN, maxN int) Option {
	return func(v *Vectorizer) {
		if minN < 1 || maxN < minN {
			return
		}
		v.minN = minN
		v.maxN = maxN
	}
}

// New returns a Vectorizer with unigrams and bigrams and the default cap.
func New(opts ...Option) *Vectorizer {
	v := &Vectorizer{
		maxFeatures: DefaultMaxFeatures,
		minN:        1,
		maxN:        2,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// FitTransform builds the vocabulary from corpus and returns its weight matrix.
// Row i corresponds to corpus[i]. A document without vocabulary terms gets an
// all-zero row.
func (v *Vectorizer) FitTransform(corpus []string) (*Matrix, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}

	counts := make([]map[string]int, len(corpus))
	totals := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range corpus {
		counts[i] = v.countTerms(doc)
		for term, c := range counts[i] {
			totals[term] += c
			docFreq[term]++
		}
	}

	terms := v.selectTerms(totals)
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}

	n := float64(len(corpus))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	rows := make([][]float64, len(corpus))
	for i, docCounts := range counts {
		row := make([]float64, len(terms))
		for term, c := range docCounts {
			col, ok := index[term]
			if !ok {
				continue
			}
			row[col] = float64(c) * idf[col]
		}
		normalize(row)
		rows[i] = row
	}

	return &Matrix{Terms: terms, Rows: rows}, nil
}

// Analyze returns the n-gram features of a single document in order of appearance.
func (v *Vectorizer) Analyze(doc string) []string {
	tokens := tokenize(doc)
	var features []string
	for n := v.minN; n <= v.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			features = append(features, strings.Join(tokens[i:i+n], " "))
		}
	}
	return features
}

func (v *Vectorizer) countTerms(doc string) map[string]int {
	counts := make(map[string]int)
	for _, f := range v.Analyze(doc) {
		counts[f]++
	}
	return counts
}

// selectTerms keeps the maxFeatures most frequent terms across the corpus, ties
// broken alphabetically, and returns them in alphabetical order.
func (v *Vectorizer) selectTerms(totals map[string]int) []string {
	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}

	if v.maxFeatures > 0 && len(terms) > v.maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if totals[terms[i]] != totals[terms[j]] {
				return totals[terms[i]] > totals[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.maxFeatures]
	}

	sort.Strings(terms)
	return terms
}

func tokenize(doc string) []string {
	fields := strings.Fields(doc)
	tokens := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f == "" {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func normalize(row []float64) {
	var sum float64
	for _, x := range row {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range row {
		row[i] /= norm
	}
}

func (m *Matrix) String() string {
	r, c := m.Dims()
	return fmt.Sprintf("matrix(%dx%d)", r, c)
}
