package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var wideScripts = []*unicode.RangeTable{unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul}

// EstimateTokens approximates the prompt cost of page Markdown: about 1.33
// tokens per word, plus one per CJK character since those scripts are not
// space separated. Bare Markdown markers ("#", "**") are not counted.
func EstimateTokens(text string) int {
	words, wide := 0, 0
	for _, field := range strings.Fields(text) {
		if strings.Trim(field, "*#-") == "" {
			continue
		}
		n := 0
		for _, r := range field {
			if unicode.In(r, wideScripts...) {
				n++
			}
		}
		wide += n
		if n < utf8.RuneCountInString(field) {
			words++
		}
	}

	tokens := int(float64(words)*1.33) + wide
	if tokens < 1 && strings.TrimSpace(text) != "" {
		tokens = 1
	}
	return tokens
}
