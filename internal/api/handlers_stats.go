package api

import (
	"net/http"

	"github.com/dgallion1/pdfmark/internal/llm"
)

type llmStatsResponse struct {
	Provider string            `json:"provider"`
	Model    string            `json:"model,omitempty"`
	Window   string            `json:"window"`
	Sessions int               `json:"sessions"`
	Stats    llm.StatsSnapshot `json:"stats"`
}

// handleLLMStats reports provider latency over the rolling window and the
// number of live sessions.
func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, llmStatsResponse{
		Provider: s.gen.Provider(),
		Model:    s.gen.Model(),
		Window:   s.cfg.LLMStatsWindow.String(),
		Sessions: s.store.Len(),
		Stats:    s.stats.Snapshot(),
	})
}
