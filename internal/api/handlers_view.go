package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgallion1/pdfmark/internal/doctree"
	"github.com/dgallion1/pdfmark/internal/render"
	"github.com/dgallion1/pdfmark/internal/session"
)

//go:embed web/index.html
var indexHTML []byte

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// viewState is everything the UI needs to draw the current page.
type viewState struct {
	Loaded      bool              `json:"loaded"`
	FileName    string            `json:"file_name,omitempty"`
	TotalPages  int               `json:"total_pages"`
	Page        int               `json:"page"` // 1-based
	HasPrevious bool              `json:"has_previous"`
	HasNext     bool              `json:"has_next"`
	TOCEntries  int               `json:"toc_entries"`
	Ratio       session.Ratio     `json:"ratio"`
	Ratios      []string          `json:"ratios"`
	Markdown    string            `json:"markdown"`
	HTML        string            `json:"html"`
	Meta        *doctree.PageMeta `json:"metadata,omitempty"`
	ChatStart   int               `json:"chat_start,omitempty"`
	ChatEnd     int               `json:"chat_end,omitempty"`
	Provider    string            `json:"provider"`
	Model       string            `json:"model,omitempty"`
	Warning     string            `json:"warning,omitempty"`
}

func (s *Server) buildView(ctx context.Context, sess *session.Session) viewState {
	v := viewState{
		Ratio:    sess.Ratio,
		Provider: s.gen.Provider(),
		Model:    s.gen.Model(),
	}
	for _, r := range session.Ratios {
		v.Ratios = append(v.Ratios, r.Label)
	}
	if !sess.Loaded() {
		return v
	}

	v.Loaded = true
	v.FileName = sess.FileName()
	v.TotalPages = sess.TotalPages()
	v.TOCEntries = len(sess.TOC())
	v.ChatStart, v.ChatEnd = chatRange(sess, 0, 0)

	entry, err := sess.CurrentPage(ctx)
	if err != nil {
		v.Warning = "Error converting page: " + err.Error()
	}
	v.Page = entry.Index + 1
	v.HasPrevious = sess.Nav.HasPrevious()
	v.HasNext = sess.Nav.HasNext()
	v.Markdown = render.Repair(entry.Text)
	meta := entry.Meta
	v.Meta = &meta

	html, err := render.ToHTML(entry.Text)
	if err != nil {
		sess.Logger().Warn("render page", "page", v.Page, "error", err)
		v.Warning = err.Error()
	}
	v.HTML = html
	return v
}

func (s *Server) writeView(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, s.buildView(r.Context(), sess))
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.writeView(w, r, sessionFrom(r.Context()))
}

type navRequest struct {
	Action   string `json:"action"`
	Page     int    `json:"page"`
	TOCIndex int    `json:"toc_index"`
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var req navRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !sess.Loaded() {
		writeError(w, session.ErrNoDocument)
		return
	}

	switch req.Action {
	case "next":
		if sess.Nav.HasNext() {
			sess.Nav.Next()
		}
	case "previous":
		if sess.Nav.HasPrevious() {
			sess.Nav.Previous()
		}
	case "jump":
		if err := sess.Nav.JumpTo(req.Page); err != nil {
			writeError(w, err)
			return
		}
	case "toc":
		if err := sess.SelectTOC(req.TOCIndex); err != nil {
			writeError(w, err)
			return
		}
	default:
		jsonError(w, fmt.Sprintf("unknown action %q", req.Action), http.StatusBadRequest)
		return
	}
	s.writeView(w, r, sess)
}

type tocItem struct {
	doctree.TOCEntry
	Label string `json:"label"`
}

func (s *Server) handleTOC(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !sess.Loaded() {
		writeError(w, session.ErrNoDocument)
		return
	}
	toc := sess.TOC()
	items := make([]tocItem, len(toc))
	for i, e := range toc {
		items[i] = tocItem{TOCEntry: e, Label: tocLabel(e)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": items})
}

func tocLabel(e doctree.TOCEntry) string {
	indent := strings.Repeat("—", max(e.Level-1, 0))
	if e.Page < 1 {
		return strings.TrimSpace(indent + " " + e.Title)
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s (p. %d)", indent, e.Title, e.Page))
}

type layoutRequest struct {
	Ratio string `json:"ratio"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var req layoutRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	ratio, err := session.ParseRatio(req.Ratio)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess.Ratio = ratio
	s.writeView(w, r, sess)
}
