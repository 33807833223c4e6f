package llm

import (
	"fmt"
	"strings"
)

// SummaryPrompt prefixes the text to summarize.
const SummaryPrompt = "Analyze the following text and provide a piece of organized summary: "

// CombinePrompt merges partial summaries of a long document.
const CombinePrompt = "The following are summaries of consecutive parts of one document. " +
	"Combine them into a single organized summary of the whole document: "

// ChatTurn is a prior message passed to BuildChatPrompt.
type ChatTurn struct {
	Role    string
	Content string
}

// BuildSummaryPrompt returns the prompt for summarizing text.
func BuildSummaryPrompt(text string) string {
	return SummaryPrompt + text
}

// BuildCombinePrompt joins partial summaries labeled with their page spans.
func BuildCombinePrompt(parts []string, spans [][2]int) string {
	var sb strings.Builder
	sb.WriteString(CombinePrompt)
	for i, part := range parts {
		sb.WriteString("\n\n")
		if i < len(spans) {
			sb.WriteString(pagesLabel(spans[i][0], spans[i][1]))
			sb.WriteString(":\n")
		}
		sb.WriteString(part)
	}
	return sb.String()
}

// BuildChatPrompt grounds a question in page text and the prior turns of
// the same page range.
func BuildChatPrompt(docName string, first, last int, context string, history []ChatTurn, question string) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant answering questions about a PDF document. ")
	sb.WriteString("Use the provided page content to answer. If the answer isn't in it, say so.\n\n")
	if docName != "" {
		sb.WriteString(fmt.Sprintf("Document: %q\n", docName))
	}
	sb.WriteString(pagesLabel(first, last))
	sb.WriteString("\n---\n")
	sb.WriteString(context)
	sb.WriteString("\n---\n")

	if len(history) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, turn := range history {
			sb.WriteString(roleLabel(turn.Role))
			sb.WriteString(": ")
			sb.WriteString(turn.Content)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\nUser: ")
	sb.WriteString(question)
	sb.WriteString("\nAssistant:")
	return sb.String()
}

func pagesLabel(first, last int) string {
	if first == last {
		return fmt.Sprintf("Page %d", first)
	}
	return fmt.Sprintf("Pages %d-%d", first, last)
}

func roleLabel(role string) string {
	if role == "user" {
		return "User"
	}
	return "Assistant"
}
