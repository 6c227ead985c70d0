package utils

import "strings"

// TruncateForLog shortens s to limit runes for log previews, appending an
// ellipsis when truncated. Line breaks are flattened so a preview stays on one line.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
