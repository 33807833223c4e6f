package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/pdfmark/internal/assistant"
	"github.com/dgallion1/pdfmark/internal/config"
	"github.com/dgallion1/pdfmark/internal/llm"
	"github.com/dgallion1/pdfmark/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for pdfmark.
type Server struct {
	router    chi.Router
	store     *session.Store
	open      session.OpenFunc
	gen       llm.Generator
	stats     *llm.LLMStats
	assistant *assistant.Assistant
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(store *session.Store, open session.OpenFunc, gen llm.Generator, stats *llm.LLMStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:     store,
		open:      open,
		gen:       gen,
		stats:     stats,
		assistant: assistant.New(gen, cfg.SummaryChunkTokens, log),
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Stateless endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/api/stats/llm", s.handleLLMStats)

	// Session-scoped endpoints.
	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(s.store, s.log))

		r.Get("/", s.handleIndex)
		r.Get("/api/view", s.handleView)

		r.Post("/api/document", s.handleUpload)
		r.Delete("/api/document", s.handleCloseDocument)
		r.Get("/api/document/pdf", s.handlePDF)

		r.Post("/api/nav", s.handleNav)
		r.Get("/api/toc", s.handleTOC)
		r.Post("/api/layout", s.handleLayout)

		r.Post("/api/summarize", s.handleSummarize)

		r.Get("/api/chat", s.handleChatTranscript)
		r.Post("/api/chat", s.handleChatMessage)
		r.Delete("/api/chat", s.handleChatClear)

		r.Get("/api/export/markdown", s.handleExportMarkdown)
		r.Get("/api/export/docx", s.handleExportDocx)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
