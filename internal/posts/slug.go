package posts

import (
	"regexp"
	"strings"
)

var nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)

// MakeSlug maps a title to its URL identifier: lower-case, each maximal run
// of characters outside [a-z0-9] becomes a single hyphen, leading and
// trailing hyphens are stripped. Idempotent; performs no uniqueness check.
func MakeSlug(title string) string {
	s := nonSlugRun.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// ParseKeywords splits a comma-separated keyword string into trimmed,
// non-empty, deduplicated tokens, preserving first-seen order.
func ParseKeywords(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}
