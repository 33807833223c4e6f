package render

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// strongRe matches **...** spans, across newlines.
var strongRe = regexp.MustCompile(`(?s)\*\*(.*?)\*\*`)

// Repair separates bold spans containing symbols from the text glued to
// them, e.g. "**!!**next" becomes "**!!** next". Markdown renderers do not
// close such spans when a word character follows. Spans of only ASCII
// letters, digits and whitespace are left alone.
func Repair(md string) string {
	matches := strongRe.FindAllStringSubmatchIndex(md, -1)
	if len(matches) == 0 {
		return md
	}

	var b strings.Builder
	b.Grow(len(md) + len(matches))
	last := 0
	for _, m := range matches {
		end := m[1]
		b.WriteString(md[last:end])
		last = end
		if !hasSymbol(md[m[2]:m[3]]) || end >= len(md) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(md[end:])
		if !unicode.IsSpace(next) {
			b.WriteByte(' ')
		}
	}
	b.WriteString(md[last:])
	return b.String()
}

func hasSymbol(s string) bool {
	for _, r := range s {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		case unicode.IsSpace(r):
		default:
			return true
		}
	}
	return false
}
