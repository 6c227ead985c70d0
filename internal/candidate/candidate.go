package candidate

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

const (
	PathField = "Path"
	NameField = "Name"
)

// Contact is the contact block scraped from a resume. Email and Phone are nil
// when nothing was found.
type Contact struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// Document is one resume after extraction and normalization.
// It is never mutated after NewDocument.
type Document struct {
	Path            string   `json:"resume_path"`
	RawText         string   `json:"-"`
	NormalizedText  string   `json:"-"`
	Contact         Contact  `json:"contact"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
}

// NewDocument copies skills so later changes to the caller's slice do not leak in.
func NewDocument(path, raw, normalized string, contact Contact, skills []string, years int) Document {
	return Document{
		Path:            path,
		RawText:         raw,
		NormalizedText:  normalized,
		Contact:         contact,
		Skills:          append([]string{}, skills...),
		ExperienceYears: years,
	}
}

// Candidate keeps a document together with its term vector and similarity score.
type Candidate struct {
	Document
	Vector []float64 `json:"-"`
	Score  float64   `json:"score"`
}

// New wraps a document into an unscored candidate.
func New(doc Document) *Candidate {
	return &Candidate{Document: doc}
}

// Name returns the scraped candidate name.
func (c *Candidate) Name() string {
	return c.Contact.Name
}

// GetStringField returns the value of a named string field or "".
func (c *Candidate) GetStringField(name string) string {
	switch name {
	case PathField:
		return c.Path
	case NameField:
		return c.Contact.Name
	default:
		return ""
	}
}

type Candidates struct {
	Items []*Candidate
}

func (c *Candidates) Len() int {
	return len(c.Items)
}

func (c *Candidates) Paths() []string {
	paths := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		paths = append(paths, item.Path)
	}
	return paths
}

// SortByScore orders candidates by descending score. Equal scores keep their
// input order.
func (c *Candidates) SortByScore() {
	sort.SliceStable(c.Items, func(i, j int) bool {
		return c.Items[i].Score > c.Items[j].Score
	})
}

// Exclude drops candidates whose named field equals one of targets and returns
// the paths of the dropped ones. Order of the rest is preserved.
func (c *Candidates) Exclude(name string, targets []string) []string {
	drop := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		drop[t] = struct{}{}
	}

	var excluded []string
	kept := c.Items[:0]
	for _, item := range c.Items {
		if _, ok := drop[item.GetStringField(name)]; ok {
			excluded = append(excluded, item.Path)
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept

	return excluded
}

// Retain keeps only the candidates for which keep returns true and returns the
// paths of the dropped ones.
func (c *Candidates) Retain(keep func(*Candidate) bool) []string {
	var dropped []string
	kept := c.Items[:0]
	for _, item := range c.Items {
		if keep(item) {
			kept = append(kept, item)
			continue
		}
		dropped = append(dropped, item.Path)
	}
	c.Items = kept
	return dropped
}

func (c *Candidates) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "candidates_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportBySkill groups candidates by every skill they list.
func (c *Candidates) ReportBySkill() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, item := range c.Items {
		for _, skill := range item.Skills {
			report[skill] = append(report[skill], map[string]string{
				"name":       item.Contact.Name,
				"resume":     item.Path,
				"score":      fmt.Sprintf("%.4f", item.Score),
				"experience": fmt.Sprintf("%d", item.ExperienceYears),
				"skills":     strings.Join(item.Skills, ", "),
			})
		}
	}
	return report
}

// SkillsSeparator joins skills in persisted and exported rows.
const SkillsSeparator = ", "

// Record is the flat row form of a scored candidate used for persistence and export.
type Record struct {
	ID         int64    `json:"id"`
	JobID      int64    `json:"job_id,omitempty"`
	Name       string   `json:"name"`
	Email      *string  `json:"email"`
	Phone      *string  `json:"phone"`
	Skills     []string `json:"skills"`
	Experience int      `json:"experience"`
	Score      float64  `json:"score"`
	ResumePath string   `json:"resume_path"`
}

// SkillsString returns the comma-joined skills column.
func (r Record) SkillsString() string {
	return strings.Join(r.Skills, SkillsSeparator)
}

// SplitSkills parses a comma-joined skills column back into a slice.
func SplitSkills(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Record flattens the candidate. The ID stays zero until the row is persisted.
func (c *Candidate) Record() Record {
	return Record{
		Name:       c.Contact.Name,
		Email:      c.Contact.Email,
		Phone:      c.Contact.Phone,
		Skills:     append([]string{}, c.Skills...),
		Experience: c.ExperienceYears,
		Score:      c.Score,
		ResumePath: c.Path,
	}
}

// Records flattens every candidate in collection order.
func (c *Candidates) Records() []Record {
	out := make([]Record, 0, len(c.Items))
	for _, item := range c.Items {
		out = append(out, item.Record())
	}
	return out
}
