package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dgallion1/pdfmark/internal/chunker"
	"github.com/dgallion1/pdfmark/internal/doctree"
	"github.com/dgallion1/pdfmark/internal/llm"
	"github.com/dgallion1/pdfmark/internal/session"
)

// ErrEmptyMessage rejects a blank chat message.
var ErrEmptyMessage = errors.New("message is empty")

// Assistant answers summary and chat requests for a session. Calls are
// sequential and block until the provider responds.
type Assistant struct {
	gen         llm.Generator
	chunkTokens int
	log         *slog.Logger
}

func New(gen llm.Generator, chunkTokens int, log *slog.Logger) *Assistant {
	if chunkTokens <= 0 {
		chunkTokens = chunker.DefaultBudget
	}
	if log == nil {
		log = slog.Default()
	}
	return &Assistant{gen: gen, chunkTokens: chunkTokens, log: log}
}

// Summary is the result of a summarize action.
type Summary struct {
	Text      string `json:"summary"`
	PageStart int    `json:"page_start"`
	PageEnd   int    `json:"page_end"`
	Calls     int    `json:"calls"`
	// Set when some pages could not be converted.
	Warning string `json:"warning,omitempty"`
}

// SummarizePage summarizes the current page of sess.
func (a *Assistant) SummarizePage(ctx context.Context, sess *session.Session) (*Summary, error) {
	entry, err := sess.CurrentPage(ctx)
	if errors.Is(err, session.ErrNoDocument) {
		return nil, err
	}
	sum := &Summary{PageStart: entry.Index + 1, PageEnd: entry.Index + 1}
	if err != nil {
		sum.Warning = err.Error()
	}

	text, err := a.gen.Generate(ctx, llm.BuildSummaryPrompt(entry.Text))
	if err != nil {
		return nil, err
	}
	sum.Text = text
	sum.Calls = 1
	return sum, nil
}

// SummarizeAll converts every page and summarizes the whole document. Text
// above the chunk budget is summarized part by part, then combined.
func (a *Assistant) SummarizeAll(ctx context.Context, sess *session.Session) (*Summary, error) {
	if !sess.Loaded() {
		return nil, session.ErrNoDocument
	}
	entries, convErr := sess.Pages.GetOrConvert(ctx, sess.Pages.AllIndices())
	total := sess.TotalPages()
	sum := &Summary{PageStart: 1, PageEnd: total}
	if convErr != nil {
		sum.Warning = convErr.Error()
	}

	pages := make([]doctree.Page, 0, total)
	for i := 0; i < total; i++ {
		if e, ok := entries[i]; ok && !e.Failed() {
			pages = append(pages, doctree.Page{Number: i + 1, Text: e.Text})
		}
	}
	chunks := chunker.PackPages(pages, a.chunkTokens)
	log := sess.Logger().With("pages", total, "chunks", len(chunks))

	switch len(chunks) {
	case 0:
		// Nothing extractable; let the model say so.
		text, err := a.gen.Generate(ctx, llm.BuildSummaryPrompt(""))
		if err != nil {
			return nil, err
		}
		sum.Text, sum.Calls = text, 1
		return sum, nil
	case 1:
		text, err := a.gen.Generate(ctx, llm.BuildSummaryPrompt(chunks[0].Text))
		if err != nil {
			return nil, err
		}
		sum.Text, sum.Calls = text, 1
		return sum, nil
	}

	log.Info("summarizing document in parts")
	parts := make([]string, 0, len(chunks))
	spans := make([][2]int, 0, len(chunks))
	for _, c := range chunks {
		text, err := a.gen.Generate(ctx, llm.BuildSummaryPrompt(c.Text))
		if err != nil {
			log.Warn("part summary failed", "chunk", c.Index, "error", err)
			return nil, err
		}
		parts = append(parts, text)
		spans = append(spans, [2]int{c.PageStart, c.PageEnd})
	}
	text, err := a.gen.Generate(ctx, llm.BuildCombinePrompt(parts, spans))
	if err != nil {
		return nil, err
	}
	sum.Text = text
	sum.Calls = len(chunks) + 1
	return sum, nil
}

// Reply is the outcome of one chat message.
type Reply struct {
	Key        string         `json:"key"`
	Answer     session.Turn   `json:"answer"`
	Transcript []session.Turn `json:"transcript"`
	Warning    string         `json:"warning,omitempty"`
}

// Chat sends message about pages start..end (1-based, inclusive). The user
// turn is recorded before the provider is called and stays recorded when
// the call fails; the assistant turn is only stored on success.
func (a *Assistant) Chat(ctx context.Context, sess *session.Session, start, end int, message string) (*Reply, error) {
	if !sess.Loaded() {
		return nil, session.ErrNoDocument
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	indices, key, err := session.ResolveRange(start, end, sess.TotalPages())
	if err != nil {
		return nil, err
	}
	sess.ChatStart, sess.ChatEnd = start, end

	entries, convErr := sess.Pages.GetOrConvert(ctx, indices)
	reply := &Reply{Key: key.String()}
	if convErr != nil {
		reply.Warning = convErr.Error()
	}
	texts := make([]string, 0, len(indices))
	for _, idx := range indices {
		texts = append(texts, entries[idx].Text)
	}

	history := sess.Chats.Get(key)
	turns := make([]llm.ChatTurn, len(history))
	for i, t := range history {
		turns[i] = llm.ChatTurn{Role: t.Role, Content: t.Content}
	}
	sess.Chats.Append(key, session.RoleUser, message)

	prompt := llm.BuildChatPrompt(sess.FileName(), start, end, strings.Join(texts, "\n\n"), turns, message)
	answer, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		sess.Logger().Warn("chat failed", "range", key.String(), "error", err)
		return nil, err
	}
	reply.Answer = sess.Chats.Append(key, session.RoleAssistant, answer)
	reply.Transcript = sess.Chats.Get(key)
	return reply, nil
}

// Transcript returns the chat for pages start..end.
func (a *Assistant) Transcript(sess *session.Session, start, end int) (string, []session.Turn, error) {
	if !sess.Loaded() {
		return "", nil, session.ErrNoDocument
	}
	_, key, err := session.ResolveRange(start, end, sess.TotalPages())
	if err != nil {
		return "", nil, err
	}
	sess.ChatStart, sess.ChatEnd = start, end
	return key.String(), sess.Chats.Get(key), nil
}

// ClearChat empties the chat for pages start..end.
func (a *Assistant) ClearChat(sess *session.Session, start, end int) error {
	if !sess.Loaded() {
		return session.ErrNoDocument
	}
	_, key, err := session.ResolveRange(start, end, sess.TotalPages())
	if err != nil {
		return err
	}
	sess.Chats.Clear(key)
	return nil
}
