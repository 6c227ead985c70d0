// Package similarity scores candidate vectors against a query vector.
package similarity

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon keeps the cosine denominator away from zero for all-zero vectors.
const Epsilon = 1e-8

// ErrDimension is returned for inputs whose shapes do not line up.
var ErrDimension = errors.New("dimension mismatch")

// Cosine returns (c · q) / (|c| * |q| + Epsilon) for every candidate row c.
// The result has one score per candidate in input order. Shapes are validated
// before any computation.
func Cosine(candidates [][]float64, query []float64) ([]float64, error) {
	for i, row := range candidates {
		if len(row) != len(query) {
			return nil, fmt.Errorf("%w: candidate %d has %d dimensions, query has %d", ErrDimension, i, len(row), len(query))
		}
	}

	qNorm := Norm(query)
	scores := make([]float64, len(candidates))
	for i, row := range candidates {
		scores[i] = Dot(row, query) / (Norm(row)*qNorm + Epsilon)
	}

	return scores, nil
}

// Dot is the dot product of equally sized vectors.
func Dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm is the euclidean length of v.
func Norm(v []float64) float64 {
	return math.Sqrt(Dot(v, v))
}
