package candidate

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func fixture() *Candidates {
	mk := func(path, name string, score float64, skills ...string) *Candidate {
		c := New(NewDocument(path, "", "", Contact{Name: name}, skills, 0))
		c.Score = score
		return c
	}

	return &Candidates{Items: []*Candidate{
		mk("a.pdf", "Alice", 0.2, "go"),
		mk("b.pdf", "Bob", 0.9, "go", "sql"),
		mk("c.pdf", "Carol", 0.2),
		mk("d.pdf", "Dan", 0.5, "sql"),
	}}
}

func TestSortByScoreIsStable(t *testing.T) {
	t.Parallel()

	c := fixture()
	c.SortByScore()

	want := []string{"b.pdf", "d.pdf", "a.pdf", "c.pdf"}
	if diff := cmp.Diff(want, c.Paths()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestExclude(t *testing.T) {
	t.Parallel()

	c := fixture()
	excluded := c.Exclude(NameField, []string{"Bob", "Nobody"})
	if diff := cmp.Diff([]string{"b.pdf"}, excluded); diff != "" {
		t.Fatalf("excluded mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.pdf", "c.pdf", "d.pdf"}, c.Paths()); diff != "" {
		t.Fatalf("remaining mismatch (-want +got):\n%s", diff)
	}
}

func TestNewDocumentCopiesSkills(t *testing.T) {
	t.Parallel()

	skills := []string{"go"}
	doc := NewDocument("x.pdf", "raw", "raw", Contact{}, skills, 1)
	skills[0] = "mutated"
	if doc.Skills[0] != "go" {
		t.Fatalf("document skills changed through caller slice")
	}
}

func TestReportBySkill(t *testing.T) {
	t.Parallel()

	report := fixture().ReportBySkill()
	if len(report["go"]) != 2 || len(report["sql"]) != 2 {
		t.Fatalf("unexpected report: %v", report)
	}
	if report["sql"][0]["name"] != "Bob" || report["sql"][0]["score"] != "0.9000" {
		t.Fatalf("unexpected entry: %v", report["sql"][0])
	}
}

func TestDumpToTmpFile(t *testing.T) {
	t.Parallel()

	name, err := fixture().DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}

	var decoded Candidates
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if decoded.Len() != 4 || decoded.Items[1].Contact.Name != "Bob" {
		t.Fatalf("unexpected dump contents: %s", data)
	}
}

func TestRecords(t *testing.T) {
	t.Parallel()

	email := "bob@example.com"
	c := fixture()
	c.Items[1].Contact.Email = &email

	records := c.Records()
	if len(records) != c.Len() {
		t.Fatalf("expected %d records, got %d", c.Len(), len(records))
	}

	bob := records[1]
	if bob.Name != "Bob" || bob.ResumePath != "b.pdf" || bob.Score != 0.9 || bob.ID != 0 {
		t.Fatalf("unexpected record: %+v", bob)
	}
	if bob.Email == nil || *bob.Email != email || bob.Phone != nil {
		t.Fatalf("unexpected contact columns: %+v", bob)
	}
	if got := bob.SkillsString(); got != "go, sql" {
		t.Fatalf("unexpected skills column %q", got)
	}
	if got := records[2].SkillsString(); got != "" {
		t.Fatalf("expected empty skills column, got %q", got)
	}
}

func TestSplitSkills(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{}},
		{in: "go, sql", want: []string{"go", "sql"}},
		{in: " python ,, machine learning ", want: []string{"python", "machine learning"}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitSkills(tt.in)); diff != "" {
			t.Fatalf("SplitSkills(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
