package skills

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// defaultSkills is the built-in vocabulary used when no other one is resolved.
var defaultSkills = []string{
	"python",
	"java",
	"c++",
	"sql",
	"javascript",
	"html",
	"css",
	"aws",
	"azure",
	"gcp",
	"docker",
	"kubernetes",
	"machine learning",
	"data analysis",
	"pandas",
	"numpy",
	"scikit-learn",
	"django",
	"flask",
	"react",
}

var (
	vocabToken = regexp.MustCompile(`[a-zA-Z0-9+#.]+`)
	yearsRe    = regexp.MustCompile(`(\d+)\+?\s*years`)
)

// Default returns a sorted copy of the built-in vocabulary.
func Default() []string {
	out := append([]string(nil), defaultSkills...)
	sort.Strings(out)
	return out
}

// BuildVocabulary merges the default vocabulary with ad-hoc terms mined from the
// provided text sources. Every token longer than two characters becomes a term,
// so the result is noisy on purpose: a job description's own words widen what
// counts as a skill.
func BuildVocabulary(sources ...[]string) []string {
	vocab := make(map[string]struct{}, len(defaultSkills))
	for _, s := range defaultSkills {
		vocab[s] = struct{}{}
	}

	for _, source := range sources {
		for _, text := range source {
			for _, token := range vocabToken.FindAllString(strings.ToLower(text), -1) {
				if len(token) > 2 {
					vocab[token] = struct{}{}
				}
			}
		}
	}

	return sortedKeys(vocab)
}

// Merge unions vocabularies, case-folding every term.
func Merge(vocabs ...[]string) []string {
	set := make(map[string]struct{})
	for _, vocab := range vocabs {
		for _, term := range vocab {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" {
				set[term] = struct{}{}
			}
		}
	}
	return sortedKeys(set)
}

// LoadFile reads one skill per line. A missing file is not an error and yields
// an empty vocabulary.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("open skills file: %w", err)
	}
	defer f.Close()

	set := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		skill := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if skill != "" {
			set[skill] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read skills file: %w", err)
	}

	return sortedKeys(set), nil
}

// Extract returns the sorted vocabulary entries found in text. A nil vocabulary
// means the default one.
func Extract(text string, vocab []string) []string {
	if vocab == nil {
		vocab = defaultSkills
	}
	return NewMatcher(vocab).Extract(text)
}

// EstimateExperienceYears returns the largest "<n> years" / "<n>+ years" figure
// in text, or 0. It is an upper-bound heuristic, not an authoritative value.
func EstimateExperienceYears(text string) int {
	best := 0
	for _, m := range yearsRe.FindAllStringSubmatch(strings.ToLower(text), -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > best {
			best = n
		}
	}
	return best
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
