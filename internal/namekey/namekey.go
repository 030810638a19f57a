// Package namekey canonicalizes channel names for cross-source comparison.
package namekey

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deaccent decomposes accented characters and drops the combining marks, so
// "Amé" and "Ame" reduce to the same bytes.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize reduces a free-text channel name to a canonical key: lowercase,
// accents stripped, everything outside [a-z0-9] removed. Both the guide keys
// and playlist lookups go through this, so the two sides always compare in the
// same space. Empty input yields an empty key.
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	stripped, _, err := transform.String(deaccent, name)
	if err != nil {
		stripped = name
	}

	stripped = strings.ToLower(stripped)

	var b strings.Builder

	b.Grow(len(stripped))

	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	return b.String()
}
