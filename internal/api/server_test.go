package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/pdfmark/internal/config"
	"github.com/dgallion1/pdfmark/internal/doctree"
	"github.com/dgallion1/pdfmark/internal/llm"
	"github.com/dgallion1/pdfmark/internal/session"
)

type fakeDoc struct {
	texts []string
	toc   []doctree.TOCEntry
	calls int
}

func (d *fakeDoc) PageCount() int          { return len(d.texts) }
func (d *fakeDoc) TOC() []doctree.TOCEntry { return d.toc }

func (d *fakeDoc) ConvertPages(ctx context.Context, indices []int) ([]doctree.PageData, error) {
	d.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]doctree.PageData, len(indices))
	for i, idx := range indices {
		out[i] = doctree.PageData{Text: d.texts[idx], Meta: doctree.PageMeta{Page: idx + 1}}
	}
	return out, nil
}

type fakeGen struct {
	prompts []string
	err     error
}

func (g *fakeGen) Provider() string { return "fake" }
func (g *fakeGen) Model() string    { return "fake-1" }

func (g *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return "generated answer", nil
}

type testEnv struct {
	srv    *Server
	doc    *fakeDoc
	gen    *fakeGen
	cookie *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	doc := &fakeDoc{
		texts: []string{"# Intro\n\nHello **world**", "page two", "page three"},
		toc: []doctree.TOCEntry{
			{Level: 1, Title: "Intro", Page: 1},
			{Level: 2, Title: "Details", Page: 3},
		},
	}
	open := func(data []byte) (session.Document, error) {
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			return nil, errors.New("not a pdf")
		}
		return doc, nil
	}
	gen := &fakeGen{}
	stats := llm.NewLLMStats(time.Hour)
	cfg := config.Config{MaxUploadBytes: 1 << 20, SummaryChunkTokens: 6000}
	store := session.NewStore(16, time.Hour, log)
	return &testEnv{
		srv: NewServer(store, open, llm.WithStats(gen, stats), stats, log, cfg),
		doc: doc,
		gen: gen,
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			e.cookie = c
		}
	}
	return rec
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	return e.do(t, httptest.NewRequest(http.MethodGet, path, nil))
}

func (e *testEnv) send(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

func (e *testEnv) upload(t *testing.T, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req)
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) viewState {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var v viewState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndex_ServesUI(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Please upload a PDF file")
	assert.NotNil(t, env.cookie)
}

func TestView_Empty(t *testing.T) {
	env := newTestEnv(t)
	v := decodeView(t, env.get(t, "/api/view"))
	assert.False(t, v.Loaded)
	assert.Equal(t, "1:1", v.Ratio.Label)
	assert.Equal(t, []string{"2:0", "1.5:0.5", "1:1", "0.5:1.5", "0:2"}, v.Ratios)
	assert.Equal(t, "fake", v.Provider)
}

func TestUpload_RendersFirstPage(t *testing.T) {
	env := newTestEnv(t)
	v := decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF-1.4")))

	assert.True(t, v.Loaded)
	assert.Equal(t, "paper.pdf", v.FileName)
	assert.Equal(t, 3, v.TotalPages)
	assert.Equal(t, 1, v.Page)
	assert.False(t, v.HasPrevious)
	assert.True(t, v.HasNext)
	assert.Equal(t, 2, v.TOCEntries)
	assert.Contains(t, v.HTML, "<h1>Intro</h1>")
	assert.Contains(t, v.HTML, "<strong>world</strong>")
	assert.Equal(t, 1, v.ChatStart)
	assert.Equal(t, 1, env.doc.calls)

	// Same file again keeps the session state.
	env.send(t, http.MethodPost, "/api/nav", navRequest{Action: "next"})
	v = decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF-1.4")))
	assert.Equal(t, 2, v.Page)
}

func TestUpload_Rejections(t *testing.T) {
	env := newTestEnv(t)

	rec := env.upload(t, "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.upload(t, "broken.pdf", []byte("garbage"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "broken.pdf")

	v := decodeView(t, env.get(t, "/api/view"))
	assert.False(t, v.Loaded)
}

func TestUpload_OpenFailureResetsSession(t *testing.T) {
	env := newTestEnv(t)
	decodeView(t, env.upload(t, "a.pdf", []byte("%PDF")))

	rec := env.upload(t, "b.pdf", []byte("nope"))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	v := decodeView(t, env.get(t, "/api/view"))
	assert.False(t, v.Loaded)
}

func TestSessions_AreIsolated(t *testing.T) {
	env := newTestEnv(t)
	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))

	other := &testEnv{srv: env.srv}
	v := decodeView(t, other.get(t, "/api/view"))
	assert.False(t, v.Loaded)
	assert.NotEqual(t, env.cookie.Value, other.cookie.Value)
}

func TestNav(t *testing.T) {
	env := newTestEnv(t)
	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))

	v := decodeView(t, env.send(t, http.MethodPost, "/api/nav", navRequest{Action: "next"}))
	assert.Equal(t, 2, v.Page)
	assert.Equal(t, "page two", v.Markdown)

	v = decodeView(t, env.send(t, http.MethodPost, "/api/nav", navRequest{Action: "jump", Page: 3}))
	assert.Equal(t, 3, v.Page)
	assert.False(t, v.HasNext)

	// Next on the last page is a no-op.
	v = decodeView(t, env.send(t, http.MethodPost, "/api/nav", navRequest{Action: "next"}))
	assert.Equal(t, 3, v.Page)

	rec := env.send(t, http.MethodPost, "/api/nav", navRequest{Action: "jump", Page: 9})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "page number must be between 1 and 3", errorMessage(t, rec))
	v = decodeView(t, env.get(t, "/api/view"))
	assert.Equal(t, 3, v.Page)

	v = decodeView(t, env.send(t, http.MethodPost, "/api/nav", navRequest{Action: "toc", TOCIndex: 0}))
	assert.Equal(t, 1, v.Page)

	v = decodeView(t, env.send(t, http.MethodPost, "/api/nav", navRequest{Action: "previous"}))
	assert.Equal(t, 1, v.Page)

	rec = env.send(t, http.MethodPost, "/api/nav", navRequest{Action: "sideways"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNav_NoDocument(t *testing.T) {
	env := newTestEnv(t)
	rec := env.send(t, http.MethodPost, "/api/nav", navRequest{Action: "next"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTOC(t *testing.T) {
	env := newTestEnv(t)
	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))

	rec := env.get(t, "/api/toc")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Entries []tocItem `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "Intro (p. 1)", body.Entries[0].Label)
	assert.Equal(t, "— Details (p. 3)", body.Entries[1].Label)
	assert.Equal(t, 3, body.Entries[1].Page)
}

func TestLayout(t *testing.T) {
	env := newTestEnv(t)
	v := decodeView(t, env.send(t, http.MethodPost, "/api/layout", layoutRequest{Ratio: "0:2"}))
	assert.Equal(t, "0:2", v.Ratio.Label)
	assert.Zero(t, v.Ratio.PDF)

	rec := env.send(t, http.MethodPost, "/api/layout", layoutRequest{Ratio: "3:1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The layout survives loading a document.
	v = decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))
	assert.Equal(t, "0:2", v.Ratio.Label)
}

func TestSummarize(t *testing.T) {
	env := newTestEnv(t)
	rec := env.send(t, http.MethodPost, "/api/summarize", summarizeRequest{Scope: "page"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))
	rec = env.send(t, http.MethodPost, "/api/summarize", summarizeRequest{Scope: "page"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "generated answer", body["summary"])
	assert.Equal(t, llm.SummaryPrompt+"# Intro\n\nHello **world**", env.gen.prompts[0])

	rec = env.send(t, http.MethodPost, "/api/summarize", summarizeRequest{Scope: "all"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, env.gen.prompts[1], "page two\n\npage three")

	rec = env.send(t, http.MethodPost, "/api/summarize", summarizeRequest{Scope: "chapter"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummarize_ProviderErrorVerbatim(t *testing.T) {
	env := newTestEnv(t)
	env.gen.err = &llm.ProviderError{Provider: "gemini", Err: errors.New("quota exceeded")}
	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))

	rec := env.send(t, http.MethodPost, "/api/summarize", summarizeRequest{})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "gemini API error: quota exceeded", errorMessage(t, rec))
}

func TestChat(t *testing.T) {
	env := newTestEnv(t)
	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))

	rec := env.send(t, http.MethodPost, "/api/chat", chatRequest{Start: 1, End: 2, Message: "what is it about?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reply struct {
		Key        string         `json:"key"`
		Transcript []session.Turn `json:"transcript"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "0-1", reply.Key)
	require.Len(t, reply.Transcript, 2)
	assert.Equal(t, "generated answer", reply.Transcript[1].Content)

	// The last range is remembered.
	rec = env.get(t, "/api/chat")
	require.Equal(t, http.StatusOK, rec.Code)
	var transcript struct {
		Start      int            `json:"start"`
		End        int            `json:"end"`
		Transcript []session.Turn `json:"transcript"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transcript))
	assert.Equal(t, 1, transcript.Start)
	assert.Equal(t, 2, transcript.End)
	assert.Len(t, transcript.Transcript, 2)

	rec = env.do(t, httptest.NewRequest(http.MethodDelete, "/api/chat?start=1&end=2", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = env.get(t, "/api/chat?start=1&end=2")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transcript))
	assert.Empty(t, transcript.Transcript)
}

func TestChat_InvalidRange(t *testing.T) {
	env := newTestEnv(t)
	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))
	calls := env.doc.calls

	rec := env.send(t, http.MethodPost, "/api/chat", chatRequest{Start: 3, End: 1, Message: "hi"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, calls, env.doc.calls)
	assert.Empty(t, env.gen.prompts)

	rec = env.get(t, "/api/chat?start=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.send(t, http.MethodPost, "/api/chat", chatRequest{Start: 1, End: 1, Message: " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChat_ProviderErrorKeepsQuestion(t *testing.T) {
	env := newTestEnv(t)
	env.gen.err = &llm.ProviderError{Provider: "gemini", Err: errors.New("unavailable")}
	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))

	rec := env.send(t, http.MethodPost, "/api/chat", chatRequest{Start: 2, End: 2, Message: "hello?"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	rec = env.get(t, "/api/chat?start=2&end=2")
	var transcript struct {
		Key        string         `json:"key"`
		Transcript []session.Turn `json:"transcript"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transcript))
	assert.Equal(t, "1", transcript.Key)
	require.Len(t, transcript.Transcript, 1)
	assert.Equal(t, session.RoleUser, transcript.Transcript[0].Role)
}

func TestDocumentPDF(t *testing.T) {
	env := newTestEnv(t)
	rec := env.get(t, "/api/document/pdf")
	assert.Equal(t, http.StatusConflict, rec.Code)

	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF-1.4 body")))
	rec = env.get(t, "/api/document/pdf")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 body", rec.Body.String())
}

func TestCloseDocument(t *testing.T) {
	env := newTestEnv(t)
	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))

	v := decodeView(t, env.do(t, httptest.NewRequest(http.MethodDelete, "/api/document", nil)))
	assert.False(t, v.Loaded)
	assert.Equal(t, http.StatusConflict, env.get(t, "/api/document/pdf").Code)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusConflict, env.get(t, "/api/export/markdown").Code)

	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))
	rec := env.get(t, "/api/export/markdown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="paper.md"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "# Intro\n\nHello **world**\n\npage two\n\npage three", rec.Body.String())

	rec = env.get(t, "/api/export/docx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="paper.docx"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestLLMStats(t *testing.T) {
	env := newTestEnv(t)
	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))
	env.send(t, http.MethodPost, "/api/summarize", summarizeRequest{Scope: "page"})

	rec := env.get(t, "/api/stats/llm")
	require.Equal(t, http.StatusOK, rec.Code)
	var body llmStatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "fake", body.Provider)
	assert.Equal(t, 1, body.Sessions)
	assert.Equal(t, 1, body.Stats.Count)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "paper.pdf", sanitizeFilename("../../paper.pdf"))
	assert.Equal(t, "scan.pdf", sanitizeFilename(`C:\Users\me\scan.pdf`))
	assert.Equal(t, "unnamed.pdf", sanitizeFilename(""))
}

func TestSessionContext_IgnoresClientCancel(t *testing.T) {
	env := newTestEnv(t)
	decodeView(t, env.upload(t, "paper.pdf", []byte("%PDF")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/nav", strings.NewReader(`{"action":"next"}`)).WithContext(ctx)
	v := decodeView(t, env.do(t, req))
	assert.Equal(t, 2, v.Page)
	assert.Empty(t, v.Warning)
}
