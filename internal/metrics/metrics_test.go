package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	t.Parallel()

	m := New()
	m.ResumeProcessed()
	m.ResumeProcessed()
	m.ResumesSkipped(ReasonExtract, 1)
	m.ResumesSkipped(ReasonFilter, 0)
	m.ObserveScoring(20*time.Millisecond, []float64{0.9, 0.1, 0})

	if got := testutil.ToFloat64(m.resumesProcessed); got != 2 {
		t.Fatalf("expected 2 processed, got %v", got)
	}
	if got := testutil.ToFloat64(m.resumesSkipped.WithLabelValues(ReasonExtract)); got != 1 {
		t.Fatalf("expected 1 skipped, got %v", got)
	}
	if got := testutil.CollectAndCount(m.resumesSkipped); got != 1 {
		t.Fatalf("expected only one skip label set, got %d", got)
	}
	if got := testutil.ToFloat64(m.candidatesScored); got != 3 {
		t.Fatalf("expected 3 scored, got %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveScoring(time.Second, []float64{0.5})
	m.Finish(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "resume_ranker.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		"resume_ranker_candidates_scored_total 1",
		"resume_ranker_scoring_duration_seconds_count 1",
		"resume_ranker_last_run_timestamp_seconds 1.7e+09",
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %q in textfile:\n%s", want, data)
		}
	}
}
