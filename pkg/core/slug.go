package core

import "strings"

var slugReplacer = strings.NewReplacer(" ", "-", "_", "-", "/", "-", `\`, "-")

// Slugify derives a repository name from a display name: lower-case, trimmed,
// with spaces, underscores and slashes turned into single dashes.
// It is total and idempotent.
func Slugify(name string) string {
	s := slugReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
	var sb strings.Builder
	sb.Grow(len(s))
	prevDash := false
	for _, r := range s {
		if r == '-' {
			if prevDash {
				continue
			}
			prevDash = true
		} else {
			prevDash = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
