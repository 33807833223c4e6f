package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pdfmark/internal/doctree"
)

// Document is an opened upload: page count, outline and page conversion.
type Document interface {
	Converter
	PageCount() int
	TOC() []doctree.TOCEntry
}

// OpenFunc opens raw PDF bytes.
type OpenFunc func(data []byte) (Document, error)

// Session is the state of one client: the loaded document, its page
// cache, navigation cursor, chat transcripts and layout choice.
//
// Handlers must hold the session lock (Lock/Unlock) for the whole
// interaction; the components below do no locking of their own.
type Session struct {
	mu sync.Mutex

	ID        string
	CreatedAt time.Time
	log       *slog.Logger

	fileName string
	data     []byte
	doc      Document
	toc      []doctree.TOCEntry

	Pages *PageCache
	Nav   *Navigator
	Chats *Transcripts
	Ratio Ratio

	// Last chat range picked in the UI, 1-based.
	ChatStart, ChatEnd int
}

// New returns an empty session.
func New(id string, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		log:       log.With("session_id", id),
		Ratio:     DefaultRatio,
	}
}

// Lock serializes interactions on the session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Loaded reports whether a document is open.
func (s *Session) Loaded() bool {
	return s.doc != nil
}

// FileName is the identity of the loaded document.
func (s *Session) FileName() string {
	return s.fileName
}

// Data returns the raw bytes of the loaded document.
func (s *Session) Data() []byte {
	return s.data
}

// TOC returns the outline of the loaded document.
func (s *Session) TOC() []doctree.TOCEntry {
	return s.toc
}

// TotalPages returns the page count, 0 when nothing is loaded.
func (s *Session) TotalPages() int {
	if s.doc == nil {
		return 0
	}
	return s.doc.PageCount()
}

// Load makes name the session's document. A name equal to the loaded one
// is a no-op and returns false. Any other name discards the session state
// and opens data; on failure the session stays empty and a
// *DocumentOpenError is returned.
func (s *Session) Load(name string, data []byte, open OpenFunc) (bool, error) {
	if s.doc != nil && s.fileName == name {
		return false, nil
	}
	s.Reset()

	doc, err := open(data)
	if err != nil {
		s.log.Warn("cannot open document", "file", name, "error", err)
		return false, &DocumentOpenError{Name: name, Err: err}
	}
	total := doc.PageCount()
	if total <= 0 {
		return false, &DocumentOpenError{Name: name, Err: errEmpty}
	}

	s.fileName = name
	s.data = data
	s.doc = doc
	s.toc = doc.TOC()
	s.Pages = NewPageCache(doc, total, s.log)
	s.Nav = NewNavigator(total)
	s.Chats = NewTranscripts()
	s.log.Info("document loaded", "file", name, "pages", total, "toc_entries", len(s.toc))
	return true, nil
}

// Reset discards the document and everything derived from it. The layout
// choice survives.
func (s *Session) Reset() {
	if s.doc != nil {
		s.log.Info("document discarded", "file", s.fileName)
	}
	s.fileName = ""
	s.data = nil
	s.doc = nil
	s.toc = nil
	s.Pages = nil
	s.Nav = nil
	s.Chats = nil
	s.ChatStart, s.ChatEnd = 0, 0
}

// CurrentPage returns the entry of the current page, converting it on a
// cache miss. A conversion failure is returned alongside the placeholder.
func (s *Session) CurrentPage(ctx context.Context) (doctree.PageEntry, error) {
	if s.doc == nil {
		return doctree.PageEntry{}, ErrNoDocument
	}
	idx := s.Nav.Current()
	entries, err := s.Pages.GetOrConvert(ctx, []int{idx})
	return entries[idx], err
}

// SelectTOC moves to the target of the i-th outline entry.
func (s *Session) SelectTOC(i int) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	if i < 0 || i >= len(s.toc) {
		return &InvalidRangeError{Start: i + 1, End: i + 1, Total: len(s.toc)}
	}
	s.Nav.GoToEntry(s.toc[i])
	return nil
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger {
	return s.log
}
