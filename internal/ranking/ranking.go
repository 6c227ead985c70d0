// Package ranking orders scored candidate records and exports them.
package ranking

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/spigell/resume-ranker/internal/candidate"
)

const (
	DefaultOutputDir = "output"
	DefaultCSVName   = "ranked_candidates.csv"
	DefaultJSONName  = "ranked_candidates.json"
)

// ErrNoCandidates is returned when there is nothing to export.
var ErrNoCandidates = errors.New("no candidates available for ranking")

// Columns is the fixed export column order.
var Columns = []string{"id", "name", "email", "phone", "skills", "experience", "score", "resume_path"}

// Sort orders records by descending score. Equal scores keep their order.
func Sort(records []candidate.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
}

// WriteCSV writes the header and one row per record in the given order.
func WriteCSV(w io.Writer, records []candidate.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV sorts records and writes them to dir/filename, creating dir when
// needed. No file is created for an empty record set.
func ExportCSV(dir, filename string, records []candidate.Record) (string, error) {
	return export(dir, filename, DefaultCSVName, records, WriteCSV)
}

// ExportJSON is the JSON counterpart of ExportCSV.
func ExportJSON(dir, filename string, records []candidate.Record) (string, error) {
	return export(dir, filename, DefaultJSONName, records, WriteJSON)
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []candidate.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteTable renders at most limit records as a text table for terminals.
// A non-positive limit renders every record.
func WriteTable(w io.Writer, records []candidate.Record, limit int) {
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"rank", "name", "score", "experience", "skills", "resume"})
	table.SetAutoWrapText(false)
	for i, r := range records[:limit] {
		table.Append([]string{
			strconv.Itoa(i + 1),
			r.Name,
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			strconv.Itoa(r.Experience),
			r.SkillsString(),
			filepath.Base(r.ResumePath),
		})
	}
	table.Render()
}

func export(dir, filename, fallback string, records []candidate.Record, write func(io.Writer, []candidate.Record) error) (string, error) {
	if len(records) == 0 {
		return "", ErrNoCandidates
	}
	if dir == "" {
		dir = DefaultOutputDir
	}
	if filename == "" {
		filename = fallback
	}

	sorted := append([]candidate.Record(nil), records...)
	Sort(sorted)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, filename)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if err := write(file, sorted); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, file.Close()
}

func row(r candidate.Record) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Name,
		deref(r.Email),
		deref(r.Phone),
		r.SkillsString(),
		strconv.Itoa(r.Experience),
		strconv.FormatFloat(r.Score, 'f', -1, 64),
		r.ResumePath,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
