package extract

import (
	"regexp"
	"strings"

	"github.com/spigell/resume-ranker/internal/candidate"
)

const (
	unknownName = "Unknown"
	// nameScanLines bounds how far from the top a "Name:" line is looked for.
	nameScanLines = 10
)

var (
	nameRe  = regexp.MustCompile(`(?i)name\s*[:\-]\s*(.+)`)
	emailRe = regexp.MustCompile(`[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9.-]+`)
	phoneRe = regexp.MustCompile(`(?:(?:\+?\d{1,3}[\s-]?)?(?:\(?\d{3}\)?[\s-]?)?\d{3}[\s-]?\d{4})`)
)

// Contact scrapes name, email and phone from raw resume text.
// The name comes from a "Name: X" line near the top, falling back to the first
// non-empty line.
func Contact(text string) candidate.Contact {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	info := candidate.Contact{Name: unknownName}
	if len(lines) > 0 {
		info.Name = lines[0]
	}
	for i, l := range lines {
		if i >= nameScanLines {
			break
		}
		if m := nameRe.FindStringSubmatch(l); m != nil {
			info.Name = strings.TrimSpace(m[1])
			break
		}
	}

	if email := emailRe.FindString(text); email != "" {
		info.Email = &email
	}
	if phone := phoneRe.FindString(text); phone != "" {
		info.Phone = &phone
	}

	return info
}
