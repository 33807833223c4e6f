package chunker

import (
	"strings"

	"github.com/dgallion1/pdfmark/internal/doctree"
)

// DefaultBudget is the token budget used when none is configured.
const DefaultBudget = 6000

// PackPages groups consecutive pages into chunks of at most budget tokens.
// A page larger than the budget is split on paragraph, then sentence,
// boundaries and its parts keep the page number as both start and end.
func PackPages(pages []doctree.Page, budget int) []doctree.Chunk {
	if budget <= 0 {
		budget = DefaultBudget
	}

	var chunks []doctree.Chunk
	var current strings.Builder
	currentTokens := 0
	start, end := 0, 0

	flush := func() {
		if currentTokens == 0 {
			return
		}
		chunks = append(chunks, doctree.Chunk{
			Text:      current.String(),
			Index:     len(chunks),
			PageStart: start,
			PageEnd:   end,
		})
		current.Reset()
		currentTokens = 0
	}

	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		tokens := EstimateTokens(text)
		if tokens == 0 {
			continue
		}

		if tokens > budget {
			flush()
			for _, part := range splitText(text, budget) {
				chunks = append(chunks, doctree.Chunk{
					Text:      part,
					Index:     len(chunks),
					PageStart: page.Number,
					PageEnd:   page.Number,
				})
			}
			continue
		}

		if currentTokens+tokens > budget {
			flush()
		}
		if currentTokens == 0 {
			start = page.Number
		} else {
			current.WriteString("\n\n")
		}
		current.WriteString(text)
		currentTokens += tokens
		end = page.Number
	}
	flush()

	return chunks
}

// splitText breaks text into parts of approximately targetTokens.
func splitText(text string, targetTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range splitByParagraphs(text) {
		paraTokens := EstimateTokens(para)

		if paraTokens > targetTokens {
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			result = append(result, splitBySentences(para, targetTokens)...)
			continue
		}

		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			current.Reset()
			currentTokens = 0
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based parts.
// A single sentence above the target is emitted on its own.
func splitBySentences(text string, targetTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range splitSentences(text) {
		sentTokens := EstimateTokens(sent)
		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			current.Reset()
			currentTokens = 0
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}
	return result
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && (text[i+1] == ' ' || text[i+1] == '\n') {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
