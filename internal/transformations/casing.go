package transformations

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// matchCase renders w with the capitalization pattern of template:
// all caps, leading capital, or unchanged.
func matchCase(template, w string) string {
	if w == "" {
		return w
	}
	if utf8.RuneCountInString(template) > 1 && template == strings.ToUpper(template) && template != strings.ToLower(template) {
		return strings.ToUpper(w)
	}
	first, _ := utf8.DecodeRuneInString(template)
	if unicode.IsUpper(first) {
		r, size := utf8.DecodeRuneInString(w)
		return string(unicode.ToUpper(r)) + w[size:]
	}
	return w
}

// singleWord reports whether candidate can stand in for one token.
func singleWord(candidate string) bool {
	return candidate != "" && !strings.ContainsAny(candidate, " \t\n_")
}
