package utils

import "strings"

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// JoinForLog joins values with a comma and truncates the result to limit runes.
func JoinForLog(values []string, limit int) string {
	return TruncateForLog(strings.Join(values, ", "), limit)
}
