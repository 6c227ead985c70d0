package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/candidate"
)

type excludedNamesFilter struct {
	toggle
	names []string
}

// NewExcludedNames creates a filter that removes candidates by the names configured in the config.
func NewExcludedNames() Filter {
	return &excludedNamesFilter{}
}

func (f *excludedNamesFilter) Name() string { return "excluded_names" }

func (f *excludedNamesFilter) Stage() Stage { return BeforeScoring }

func (f *excludedNamesFilter) Validate(cfg *Config) error {
	f.names = nil
	if cfg == nil {
		return nil
	}
	for _, name := range cfg.ExcludeNames {
		if name = strings.TrimSpace(name); name != "" {
			f.names = append(f.names, name)
		}
	}
	return nil
}

func (f *excludedNamesFilter) Apply(_ context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error) {
	initial := c.Len()
	if len(f.names) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(candidate.NameField, f.names)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding candidates by name",
			zap.Strings("excluded_names", f.names),
			zap.Strings("excluded_resumes", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *excludedNamesFilter) Status() Status {
	details := map[string]string{}
	if len(f.names) > 0 {
		details["names"] = strings.Join(f.names, ",")
	}
	return Status{Name: f.Name(), Stage: f.Stage().String(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
