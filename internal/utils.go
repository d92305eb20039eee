package internal

import (
	"strings"
	"unicode"
)

// Version is the application version reported by the CLI and sent in the
// User-Agent header of every remote request.
const Version = "0.3.0"

// UserAgent returns the default User-Agent for remote dictionary requests
func UserAgent() string {
	return "grunwald/" + Version
}

// SanitizeFilename creates a safe filename from a word name.
// Letters and digits of any script are kept, everything else becomes '_'.
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "word"
	}
	return b.String()
}

// isAlphaNumeric checks if a rune is a letter or digit
func isAlphaNumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
