package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfmark/internal/parser"
	"github.com/dgallion1/pdfmark/internal/session"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsPDF(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	if _, err := sess.Load(filename, data, s.open); err != nil {
		writeError(w, err)
		return
	}
	s.writeView(w, r, sess)
}

func (s *Server) handleCloseDocument(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.Reset()
	s.writeView(w, r, sess)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if !sess.Loaded() {
		writeError(w, session.ErrNoDocument)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", sess.FileName()))
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, sess.FileName(), sess.CreatedAt, bytes.NewReader(sess.Data()))
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed.pdf"
	}
	return name
}
