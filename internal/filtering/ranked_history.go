package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/candidate"
)

const historyMissingMsg = "no ranking history configured"

// History reports resumes that were already ranked for the current job.
type History interface {
	RankedPaths(ctx context.Context) ([]string, error)
}

type rankedHistoryFilter struct {
	toggle
}

// NewRankedHistory creates a filter that removes resumes already stored for the job.
// It is a no-op unless Deps.History is set.
func NewRankedHistory() Filter {
	return &rankedHistoryFilter{}
}

func (f *rankedHistoryFilter) Name() string { return "ranked_history" }

func (f *rankedHistoryFilter) Stage() Stage { return BeforeScoring }

func (f *rankedHistoryFilter) Validate(*Config) error { return nil }

func (f *rankedHistoryFilter) Apply(ctx context.Context, deps Deps, c *candidate.Candidates) (*candidate.Candidates, Step, error) {
	initial := c.Len()
	if deps.History == nil {
		if deps.Logger != nil {
			deps.Logger.Debug("keeping already ranked resumes", zap.String("reason", historyMissingMsg))
		}
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	paths, err := deps.History.RankedPaths(ctx)
	if err != nil {
		return c, Step{}, fmt.Errorf("get ranked resumes: %w", err)
	}

	excluded := c.Exclude(candidate.PathField, paths)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding resumes ranked before",
			zap.Strings("excluded_resumes", excluded),
			zap.Int("candidates_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *rankedHistoryFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Stage:   f.Stage().String(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"history_required": strconv.FormatBool(true)},
	}
}
