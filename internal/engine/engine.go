// Package engine runs one scoring session: it vectorizes the job description
// together with every candidate and attaches cosine scores to the candidates.
package engine

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/candidate"
	"github.com/spigell/resume-ranker/internal/similarity"
	"github.com/spigell/resume-ranker/internal/textnorm"
	"github.com/spigell/resume-ranker/internal/vectorize"
)

// ErrNoCandidates is returned when a scoring session has nothing to rank.
var ErrNoCandidates = errors.New("no candidates to score")

// Engine scores candidates against a job description. The vocabulary is
// rebuilt on every Score call, so scores are only comparable within one call.
type Engine struct {
	vectorizer *vectorize.Vectorizer
	logger     *zap.Logger
}

// New creates an engine. A nil logger is replaced with a no-op one.
func New(logger *zap.Logger, opts ...vectorize.Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		vectorizer: vectorize.New(opts...),
		logger:     logger,
	}
}

// Score vectorizes [job description, candidates...] and sets Vector and Score on
// every candidate. Row 0 of the matrix is the job description.
func (e *Engine) Score(jdText string, cands []*candidate.Candidate) error {
	if len(cands) == 0 {
		return ErrNoCandidates
	}

	started := time.Now()

	corpus := make([]string, 0, len(cands)+1)
	corpus = append(corpus, textnorm.Normalize(jdText))
	for _, c := range cands {
		corpus = append(corpus, c.NormalizedText)
	}

	matrix, err := e.vectorizer.FitTransform(corpus)
	if err != nil {
		return fmt.Errorf("vectorize corpus: %w", err)
	}

	scores, err := similarity.Cosine(matrix.Rows[1:], matrix.Row(0))
	if err != nil {
		return fmt.Errorf("cosine similarity: %w", err)
	}

	for i, c := range cands {
		c.Vector = matrix.Row(i + 1)
		c.Score = scores[i]
	}

	_, terms := matrix.Dims()
	e.logger.Info("computed similarity scores",
		zap.Int("candidates", len(cands)),
		zap.Int("vocabulary_terms", terms),
		zap.Duration("took", time.Since(started)),
	)

	return nil
}
