package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/pdfmark/internal/export"
	"github.com/dgallion1/pdfmark/internal/session"
)

// exportMarkdown converts the whole document. Failed pages keep their
// placeholder so the download still happens.
func exportMarkdown(r *http.Request, sess *session.Session) (string, error) {
	text, err := export.Markdown(r.Context(), sess)
	var convErr *session.ConversionError
	if errors.As(err, &convErr) {
		sess.Logger().Warn("export with failed pages", "error", err)
		return text, nil
	}
	return text, err
}

func (s *Server) handleExportMarkdown(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	text, err := exportMarkdown(r, sess)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.MarkdownFileName(sess.FileName())))
	w.Write([]byte(text))
}

func (s *Server) handleExportDocx(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	text, err := exportMarkdown(r, sess)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteDocx(&buf, text); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.DocxFileName(sess.FileName())))
	w.Write(buf.Bytes())
}
