package log

import "strings"

// RedactString keeps the first and last two characters of s and masks the rest.
func RedactString(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
