package books

import (
	"regexp"
	"strings"
)

var asinRe = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// NormalizeASIN strips every non-alphanumeric character from the input.
// Amazon listings are routinely pasted with hyphens or whitespace, so
// validation runs against the stripped form.
func NormalizeASIN(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(raw)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidASIN reports whether the stripped input is a ten-character
// Amazon identifier. Both ASINs (B-prefixed) and ISBN-10s pass.
func ValidASIN(raw string) bool {
	return asinRe.MatchString(NormalizeASIN(raw))
}
