// Package skills turns free-text skill names into comparable tokens and binary vectors.
package skills

import (
	"regexp"
	"strings"
)

// versionPattern matches version numbers ("3", "3.9") together with the whitespace around them.
var versionPattern = regexp.MustCompile(`\s*\d+(\.\d+)?\s*`)

// synonyms collapses common spellings of the same skill into one canonical token.
// Canonical values must map to themselves (or be absent) so Normalize stays idempotent.
var synonyms = map[string]string{
	"javascript":      "javascript",
	"js":              "javascript",
	"node":            "nodejs",
	"node.js":         "nodejs",
	"python3":         "python",
	"web development": "web development",
	"frontend":        "frontend development",
	"front-end":       "frontend development",
	"backend":         "backend development",
	"back-end":        "backend development",
}

// Normalize returns the canonical token for a raw skill name.
// Any input produces a token, the empty string included.
func Normalize(raw string) string {
	token := strings.TrimSpace(strings.ToLower(raw))
	token = strings.TrimSpace(versionPattern.ReplaceAllString(token, ""))

	if canonical, ok := synonyms[token]; ok {
		return canonical
	}

	return token
}

// NormalizeAll normalizes every raw skill and drops duplicates, keeping first-seen order.
func NormalizeAll(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	tokens := make([]string, 0, len(raw))

	for _, skill := range raw {
		token := Normalize(skill)
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}

	return tokens
}
