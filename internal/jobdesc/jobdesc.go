// Package jobdesc loads the job description a scoring run ranks resumes against.
package jobdesc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spigell/resume-ranker/internal/skills"
)

const defaultTitle = "Job Description"

// ErrNotFound is returned when no job description can be located.
var ErrNotFound = errors.New("job description not found")

type JobDescription struct {
	// ID is zero until the description is persisted.
	ID             int64
	Title          string
	Text           string
	RequiredSkills []string
	Path           string
}

// LoadFromDir loads the first *.txt file (in lexical order) found in dir.
func LoadFromDir(dir string) (*JobDescription, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: directory %s", ErrNotFound, dir)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no .txt files in %s", ErrNotFound, dir)
	}
	sort.Strings(matches)

	return Load(matches[0])
}

// Load reads a single job description file.
func Load(path string) (*JobDescription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read job description: %w", err)
	}

	return Parse(string(data), path), nil
}

// Parse builds a job description from text. The title is the first non-empty
// line; required skills are matched against the default vocabulary.
func Parse(text, path string) *JobDescription {
	return &JobDescription{
		Title:          title(text),
		Text:           text,
		RequiredSkills: skills.Extract(text, nil),
		Path:           path,
	}
}

func title(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return defaultTitle
}
