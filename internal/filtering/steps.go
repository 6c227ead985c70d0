package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/candidate"
	"github.com/spigell/resume-ranker/internal/skills"
)

// toggle carries the enabled state shared by all steps.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

func logDropped(deps Deps, msg string, dropped []string, left int, fields ...zap.Field) {
	if deps.Logger == nil || len(dropped) == 0 {
		return
	}
	fields = append(fields,
		zap.Strings("excluded_resumes", dropped),
		zap.Int("candidates_left", left),
	)
	deps.Logger.Warn(msg, fields...)
}

type emptyTextFilter struct {
	toggle
}

// NewEmptyText creates a filter that skips resumes without extractable text.
func NewEmptyText() Filter {
	return &emptyTextFilter{}
}

func (f *emptyTextFilter) Name() string { return "empty_text" }

func (f *emptyTextFilter) Stage() Stage { return BeforeScoring }

func (f *emptyTextFilter) Validate(*Config) error { return nil }

func (f *emptyTextFilter) Apply(_ context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error) {
	initial := c.Len()
	dropped := c.Retain(func(item *candidate.Candidate) bool {
		return strings.TrimSpace(item.RawText) != ""
	})
	logDropped(deps, "skipping resumes with no text", dropped, c.Len())

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *emptyTextFilter) Status() Status {
	return Status{Name: f.Name(), Stage: f.Stage().String(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type duplicatesFilter struct {
	toggle
}

// NewDuplicates creates a filter that keeps only the first of resumes with identical normalized text.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Stage() Stage { return BeforeScoring }

func (f *duplicatesFilter) Validate(*Config) error { return nil }

func (f *duplicatesFilter) Apply(_ context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error) {
	initial := c.Len()
	seen := make(map[string]string, initial)
	dropped := c.Retain(func(item *candidate.Candidate) bool {
		if _, ok := seen[item.NormalizedText]; ok {
			return false
		}
		seen[item.NormalizedText] = item.Path
		return true
	})
	logDropped(deps, "skipping duplicate resumes", dropped, c.Len())

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *duplicatesFilter) Status() Status {
	return Status{Name: f.Name(), Stage: f.Stage().String(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type minExperienceFilter struct {
	toggle
	years int
}

// NewMinExperience creates a filter that drops candidates below the configured experience estimate.
func NewMinExperience() Filter {
	return &minExperienceFilter{}
}

func (f *minExperienceFilter) Name() string { return "min_experience" }

func (f *minExperienceFilter) Stage() Stage { return BeforeScoring }

func (f *minExperienceFilter) Validate(cfg *Config) error {
	f.years = 0
	if cfg != nil {
		f.years = cfg.MinExperience
	}
	if f.years < 0 {
		return fmt.Errorf("minimum experience must not be negative, got %d", f.years)
	}
	return nil
}

func (f *minExperienceFilter) Apply(_ context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error) {
	initial := c.Len()
	if f.years == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	dropped := c.Retain(func(item *candidate.Candidate) bool {
		return item.ExperienceYears >= f.years
	})
	logDropped(deps, "excluding candidates by experience", dropped, c.Len(), zap.Int("min_experience", f.years))

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *minExperienceFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Stage:   f.Stage().String(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_experience": strconv.Itoa(f.years)},
	}
}

type requiredSkillsFilter struct {
	toggle
	required []string
	matcher  *skills.Matcher
}

// NewRequiredSkills creates a filter that drops candidates missing any of the required skills.
func NewRequiredSkills() Filter {
	return &requiredSkillsFilter{}
}

func (f *requiredSkillsFilter) Name() string { return "required_skills" }

func (f *requiredSkillsFilter) Stage() Stage { return BeforeScoring }

func (f *requiredSkillsFilter) Validate(cfg *Config) error {
	f.required = nil
	if cfg != nil {
		f.required = skills.Merge(cfg.RequiredSkills)
	}
	f.matcher = skills.NewMatcher(f.required)
	return nil
}

func (f *requiredSkillsFilter) Apply(_ context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error) {
	initial := c.Len()
	if len(f.required) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	dropped := c.Retain(func(item *candidate.Candidate) bool {
		return len(f.matcher.Extract(item.RawText)) == f.matcher.Len()
	})
	logDropped(deps, "excluding candidates missing required skills", dropped, c.Len(), zap.Strings("required_skills", f.required))

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *requiredSkillsFilter) Status() Status {
	details := map[string]string{}
	if len(f.required) > 0 {
		details["required_skills"] = strings.Join(f.required, ",")
	}
	return Status{Name: f.Name(), Stage: f.Stage().String(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

type minScoreFilter struct {
	toggle
	threshold float64
}

// NewMinScore creates a filter that drops scored candidates below the configured similarity.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Stage() Stage { return AfterScoring }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.threshold = 0
	if cfg != nil {
		f.threshold = cfg.MinScore
	}
	if f.threshold < 0 || f.threshold > 1 {
		return fmt.Errorf("minimum score must be within [0, 1], got %v", f.threshold)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error) {
	initial := c.Len()
	if f.threshold == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	dropped := c.Retain(func(item *candidate.Candidate) bool {
		return item.Score >= f.threshold
	})
	logDropped(deps, "excluding candidates below score threshold", dropped, c.Len(), zap.Float64("min_score", f.threshold))

	return c, Step{Initial: initial, Dropped: len(dropped), Left: c.Len()}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Stage:   f.Stage().String(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"min_score": fmt.Sprintf("%.2f", f.threshold)},
	}
}
