package filtering

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/resume-ranker/internal/candidate"
)

func newCandidate(path, raw, normalized string, years int, score float64) *candidate.Candidate {
	c := candidate.New(candidate.NewDocument(path, raw, normalized, candidate.Contact{Name: path}, nil, years))
	c.Score = score
	return c
}

func TestRunBeforeScoring(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)
	deps := Deps{Logger: zap.New(core)}

	c := &candidate.Candidates{Items: []*candidate.Candidate{
		newCandidate("a.txt", "Python AWS Docker 5 years", "python aws docker 5 years", 5, 0),
		newCandidate("empty.txt", "   ", "", 0, 0),
		newCandidate("copy.txt", "python aws docker 5 years", "python aws docker 5 years", 5, 0),
		newCandidate("junior.txt", "python aws docker 1 years", "python aws docker 1 years", 1, 0),
		newCandidate("noaws.txt", "python docker 7 years", "python docker 7 years", 7, 0),
	}}

	cfg := &Config{MinExperience: 3, RequiredSkills: []string{"Python", "aws"}}
	steps := Default()
	if err := Validate(cfg, steps); err != nil {
		t.Fatalf("validate: %v", err)
	}

	got, err := Run(context.Background(), deps, BeforeScoring, steps, c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if diff := cmp.Diff([]string{"a.txt"}, got.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	var names []string
	for _, entry := range observed.FilterMessage("filter step").All() {
		ctx := entry.ContextMap()
		names = append(names, ctx["name"].(string))
		if ctx["initial"].(int64)-ctx["dropped"].(int64) != ctx["left"].(int64) {
			t.Fatalf("inconsistent step accounting: %v", ctx)
		}
	}
	if diff := cmp.Diff([]string{"empty_text", "duplicates", "exclude_file", "excluded_names", "ranked_history", "min_experience", "required_skills"}, names); diff != "" {
		t.Fatalf("step order mismatch (-want +got):\n%s", diff)
	}
}

func TestRunAfterScoring(t *testing.T) {
	t.Parallel()

	c := &candidate.Candidates{Items: []*candidate.Candidate{
		newCandidate("high.txt", "x", "x", 0, 0.8),
		newCandidate("low.txt", "y", "y", 0, 0.1),
	}}

	steps := Default()
	if err := Validate(&Config{MinScore: 0.5}, steps); err != nil {
		t.Fatalf("validate: %v", err)
	}

	got, err := Run(context.Background(), Deps{}, AfterScoring, steps, c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"high.txt"}, got.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSkipsDisabled(t *testing.T) {
	t.Parallel()

	c := &candidate.Candidates{Items: []*candidate.Candidate{
		newCandidate("a.txt", "same", "same", 0, 0),
		newCandidate("b.txt", "same", "same", 0, 0),
	}}

	steps := Default()
	DisableByName(steps, "duplicates", "keep copies")
	if err := Validate(nil, steps); err != nil {
		t.Fatalf("validate: %v", err)
	}

	got, err := Run(context.Background(), Deps{}, BeforeScoring, steps, c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("expected both candidates to stay, got %v", got.Paths())
	}

	for _, status := range Describe(steps) {
		if status.Name != "duplicates" {
			continue
		}
		if status.Enabled || status.Reason != "keep copies" {
			t.Fatalf("unexpected status: %+v", status)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Deps{}, BeforeScoring, Default(), &candidate.Candidates{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "nil config", cfg: nil},
		{name: "zero config", cfg: &Config{}},
		{name: "negative experience", cfg: &Config{MinExperience: -1}, wantErr: true},
		{name: "score above one", cfg: &Config{MinScore: 1.5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.cfg, Default())
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	steps := Default()
	if err := Validate(&Config{MinExperience: 2, RequiredSkills: []string{"go"}, MinScore: 0.25}, steps); err != nil {
		t.Fatalf("validate: %v", err)
	}

	statuses := Describe(steps)
	if len(statuses) != len(steps) {
		t.Fatalf("expected %d statuses, got %d", len(steps), len(statuses))
	}

	byName := make(map[string]Status, len(statuses))
	for _, s := range statuses {
		byName[s.Name] = s
	}
	if got := byName["min_experience"].Details["min_experience"]; got != "2" {
		t.Fatalf("unexpected min_experience detail %q", got)
	}
	if got := byName["required_skills"].Details["required_skills"]; got != "go" {
		t.Fatalf("unexpected required_skills detail %q", got)
	}
	if got := byName["min_score"].Details["min_score"]; got != "0.25" {
		t.Fatalf("unexpected min_score detail %q", got)
	}
	if byName["min_score"].Stage != "after_scoring" {
		t.Fatalf("unexpected min_score stage %q", byName["min_score"].Stage)
	}
}

type fakeHistory struct {
	paths []string
	err   error
}

func (h fakeHistory) RankedPaths(context.Context) ([]string, error) {
	return h.paths, h.err
}

func TestExclusionSteps(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	excludeFile := filepath.Join(dir, "exclude.txt")
	if err := os.WriteFile(excludeFile, []byte("# reviewed\n/old/b.txt\n\n"), 0o644); err != nil {
		t.Fatalf("write exclude file: %v", err)
	}

	tests := []struct {
		name    string
		cfg     *Config
		history History
		want    []string
		wantErr bool
	}{
		{
			name: "exclude file matches base names",
			cfg:  &Config{ExcludeFile: excludeFile},
			want: []string{"r/a.txt", "r/c.txt", "r/d.txt"},
		},
		{
			name: "excluded names",
			cfg:  &Config{ExcludeNames: []string{" r/c.txt ", ""}},
			want: []string{"r/a.txt", "r/b.txt", "r/d.txt"},
		},
		{
			name:    "ranked history",
			history: fakeHistory{paths: []string{"r/a.txt", "r/d.txt"}},
			want:    []string{"r/b.txt", "r/c.txt"},
		},
		{
			name:    "history error",
			history: fakeHistory{err: errors.New("db down")},
			wantErr: true,
		},
		{
			name:    "missing exclude file",
			cfg:     &Config{ExcludeFile: filepath.Join(dir, "missing.txt")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &candidate.Candidates{}
			for _, name := range []string{"a", "b", "c", "d"} {
				path := "r/" + name + ".txt"
				c.Items = append(c.Items, newCandidate(path, name, name, 0, 0))
			}

			steps := Default()
			if err := Validate(tt.cfg, steps); err != nil {
				t.Fatalf("validate: %v", err)
			}

			got, err := Run(context.Background(), Deps{History: tt.history}, BeforeScoring, steps, c)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if diff := cmp.Diff(tt.want, got.Paths()); diff != "" {
				t.Fatalf("paths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequiredSkillsHyphenated(t *testing.T) {
	t.Parallel()

	raw := "Python, scikit-learn, C++ developer"
	c := &candidate.Candidates{Items: []*candidate.Candidate{
		newCandidate("ml.txt", raw, "python scikit learn c++ developer", 0, 0),
		newCandidate("web.txt", "React and CSS", "react css", 0, 0),
	}}

	steps := []Filter{NewRequiredSkills()}
	if err := Validate(&Config{RequiredSkills: []string{"scikit-learn", "c++"}}, steps); err != nil {
		t.Fatalf("validate: %v", err)
	}

	got, err := Run(context.Background(), Deps{}, BeforeScoring, steps, c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"ml.txt"}, got.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyTextKeepsUnnormalizableResumes(t *testing.T) {
	t.Parallel()

	c := &candidate.Candidates{Items: []*candidate.Candidate{
		newCandidate("stopwords.txt", "and the of", "", 0, 0),
		newCandidate("cyrillic.txt", "Привет мир", "", 0, 0),
		newCandidate("blank.txt", " \n\t", "", 0, 0),
	}}

	got, err := Run(context.Background(), Deps{}, BeforeScoring, []Filter{NewEmptyText()}, c)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"stopwords.txt", "cyrillic.txt"}, got.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}
