// Package pipeline turns a directory of resumes into ranked candidates for one
// job description.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/candidate"
	"github.com/spigell/resume-ranker/internal/engine"
	"github.com/spigell/resume-ranker/internal/extract"
	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/jobdesc"
	"github.com/spigell/resume-ranker/internal/metrics"
	"github.com/spigell/resume-ranker/internal/skills"
	"github.com/spigell/resume-ranker/internal/textnorm"
	"github.com/spigell/resume-ranker/internal/utils"
	"github.com/spigell/resume-ranker/internal/vectorize"
)

var (
	// ErrNotFound is returned when the resume directory does not exist.
	ErrNotFound = errors.New("resume directory not found")
	// ErrNoJobDescription is returned when Process is called without a job description.
	ErrNoJobDescription = errors.New("job description is required")
)

const previewLen = 80

// Vocabulary selects which skill terms the matcher recognizes.
type Vocabulary struct {
	// IncludeJobTerms adds every token of the job description longer than two characters.
	IncludeJobTerms bool
	// SkillsFile adds one skill per line from the file. A missing file adds nothing.
	SkillsFile string
}

type Config struct {
	Vocabulary      Vocabulary
	Filters         filtering.Config
	DisabledFilters []string
	MaxFeatures     int
}

type Deps struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	History filtering.History
}

type Pipeline struct {
	cfg       Config
	logger    *zap.Logger
	metrics   *metrics.Metrics
	history   filtering.History
	extractor *extract.Extractor
	engine    *engine.Engine
	steps     []filtering.Filter
}

// New validates the filter configuration and wires the collaborators.
func New(cfg Config, deps Deps) (*Pipeline, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.New()
	}

	steps := filtering.Default()
	for _, name := range cfg.DisabledFilters {
		filtering.DisableByName(steps, strings.TrimSpace(name), "disabled in config")
	}
	if err := filtering.Validate(&cfg.Filters, steps); err != nil {
		return nil, fmt.Errorf("validating filters: %w", err)
	}

	var opts []vectorize.Option
	if cfg.MaxFeatures > 0 {
		opts = append(opts, vectorize.WithMaxFeatures(cfg.MaxFeatures))
	}

	return &Pipeline{
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
		history:   deps.History,
		extractor: extract.New(logger),
		engine:    engine.New(logger, opts...),
		steps:     steps,
	}, nil
}

// Filters returns the configured filter steps for status reporting.
func (p *Pipeline) Filters() []filtering.Filter {
	return p.steps
}

// Process extracts every supported file in resumeDir, filters and scores the
// resulting candidates against jd and returns them sorted by descending score.
// An empty directory yields an empty collection and no error.
func (p *Pipeline) Process(ctx context.Context, resumeDir string, jd *jobdesc.JobDescription) (*candidate.Candidates, error) {
	if jd == nil {
		return nil, ErrNoJobDescription
	}

	files, err := listResumes(resumeDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		p.logger.Warn("no resumes found", zap.String("dir", resumeDir),
			zap.Strings("supported_extensions", extract.SupportedExtensions()))
		return &candidate.Candidates{}, nil
	}

	vocab, err := p.ResolveVocabulary(jd)
	if err != nil {
		return nil, err
	}
	matcher := skills.NewMatcher(vocab)
	p.logger.Debug("skill vocabulary resolved", zap.Int("terms", matcher.Len()))

	result := &candidate.Candidates{Items: make([]*candidate.Candidate, 0, len(files))}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := p.extractor.Text(path)
		if err != nil {
			p.logger.Warn("skipping resume", zap.String("path", path), zap.Error(err))
			p.metrics.ResumesSkipped(metrics.ReasonExtract, 1)
			continue
		}
		if strings.TrimSpace(raw) == "" {
			p.logger.Warn("skipping resume with empty text", zap.String("path", path))
			p.metrics.ResumesSkipped(metrics.ReasonEmpty, 1)
			continue
		}

		doc := p.document(path, raw, matcher)
		p.logger.Debug("resume processed",
			zap.String("path", path),
			zap.String("name", doc.Contact.Name),
			zap.Strings("skills", doc.Skills),
			zap.Int("experience_years", doc.ExperienceYears),
			zap.String("preview", utils.TruncateForLog(raw, previewLen)),
		)
		p.metrics.ResumeProcessed()
		result.Items = append(result.Items, candidate.New(doc))
	}

	deps := filtering.Deps{Logger: p.logger, History: p.history}

	before := result.Len()
	result, err = filtering.Run(ctx, deps, filtering.BeforeScoring, p.steps, result)
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}
	p.metrics.ResumesSkipped(metrics.ReasonFilter, before-result.Len())

	if result.Len() == 0 {
		p.logger.Warn("no candidates left to score", zap.String("dir", resumeDir))
		return result, nil
	}

	p.logger.Debug("scoring candidates", zap.Strings("resumes", result.Paths()))
	started := time.Now()
	if err := p.engine.Score(jd.Text, result.Items); err != nil {
		return nil, fmt.Errorf("scoring candidates: %w", err)
	}
	p.metrics.ObserveScoring(time.Since(started), scores(result))

	before = result.Len()
	result, err = filtering.Run(ctx, deps, filtering.AfterScoring, p.steps, result)
	if err != nil {
		return nil, fmt.Errorf("filtering scored candidates: %w", err)
	}
	p.metrics.ResumesSkipped(metrics.ReasonFilter, before-result.Len())

	result.SortByScore()
	return result, nil
}

// ResolveVocabulary builds the skill vocabulary for one session.
func (p *Pipeline) ResolveVocabulary(jd *jobdesc.JobDescription) ([]string, error) {
	vocab := skills.Default()
	if p.cfg.Vocabulary.IncludeJobTerms && jd != nil {
		vocab = skills.BuildVocabulary([]string{jd.Text})
	}

	if path := strings.TrimSpace(p.cfg.Vocabulary.SkillsFile); path != "" {
		extra, err := skills.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if len(extra) == 0 {
			p.logger.Warn("skills file is missing or empty", zap.String("path", path))
		}
		vocab = skills.Merge(vocab, extra)
	}

	return vocab, nil
}

func (p *Pipeline) document(path, raw string, matcher *skills.Matcher) candidate.Document {
	normalized := textnorm.Normalize(raw)
	return candidate.NewDocument(
		path,
		raw,
		normalized,
		extract.Contact(raw),
		matcher.Extract(raw),
		skills.EstimateExperienceYears(raw),
	)
}

func listResumes(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("reading resume directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !extract.IsSupported(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}

func scores(c *candidate.Candidates) []float64 {
	out := make([]float64, 0, c.Len())
	for _, item := range c.Items {
		out = append(out, item.Score)
	}
	return out
}
