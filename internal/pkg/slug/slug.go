// Package slug derives URL-safe identifiers from human-readable names.
package slug

import "strings"

// Derive lower-cases the input, strips everything outside [a-z0-9 -],
// collapses whitespace and hyphen runs into single hyphens, and trims
// leading/trailing hyphens. "Life Style & Co-Working!!" becomes
// "life-style-co-working".
func Derive(name string) string {
	lowered := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '-':
			b.WriteByte('-')
		}
	}

	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}
