package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/candidate"
)

// Stage tells when a filter runs relative to scoring.
type Stage int

const (
	// BeforeScoring filters shape the corpus that gets vectorized.
	BeforeScoring Stage = iota
	// AfterScoring filters only see scored candidates.
	AfterScoring
)

func (s Stage) String() string {
	switch s {
	case BeforeScoring:
		return "before_scoring"
	case AfterScoring:
		return "after_scoring"
	default:
		return "unknown"
	}
}

// Filter represents a single filtering step applied to candidates.
type Filter interface {
	Name() string
	Stage() Stage
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger  *zap.Logger
	History History
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	MinExperience  int
	RequiredSkills []string
	MinScore       float64
	ExcludeNames   []string
	ExcludeFile    string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Stage   string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns every built-in step in execution order.
func Default() []Filter {
	return []Filter{
		NewEmptyText(),
		NewDuplicates(),
		NewExcludeFile(),
		NewExcludedNames(),
		NewRankedHistory(),
		NewMinExperience(),
		NewRequiredSkills(),
		NewMinScore(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Validate checks every enabled step against cfg.
func Validate(cfg *Config, steps []Filter) error {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}

// Run executes the enabled steps of the given stage sequentially. Steps must
// have been validated with Validate first.
func Run(ctx context.Context, deps Deps, stage Stage, steps []Filter, c *candidate.Candidates) (*candidate.Candidates, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if step.Stage() != stage {
			continue
		}
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, info, err := step.Apply(ctx, deps, c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Stringer("stage", stage),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		c = next
	}

	return c, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Stage:   step.Stage().String(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
