package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/pdfmark/internal/session"
)

type summarizeRequest struct {
	Scope string `json:"scope"`
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var req summarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	switch req.Scope {
	case "", "page":
		sum, err := s.assistant.SummarizePage(r.Context(), sess)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	case "all":
		sum, err := s.assistant.SummarizeAll(r.Context(), sess)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	default:
		jsonError(w, fmt.Sprintf("unknown scope %q", req.Scope), http.StatusBadRequest)
	}
}

// chatRange fills a missing bound from the last range used, then from the
// current page.
func chatRange(sess *session.Session, start, end int) (int, int) {
	if start == 0 {
		start = sess.ChatStart
	}
	if end == 0 {
		end = sess.ChatEnd
	}
	if start == 0 && sess.Nav != nil {
		start = sess.Nav.Current() + 1
	}
	if end == 0 {
		end = start
	}
	return start, end
}

func queryRange(r *http.Request) (int, int, error) {
	var bounds [2]int
	for i, name := range []string{"start", "end"} {
		v := r.URL.Query().Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid %s: %q", name, v)
		}
		bounds[i] = n
	}
	return bounds[0], bounds[1], nil
}

func (s *Server) handleChatTranscript(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	start, end, err := queryRange(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !sess.Loaded() {
		writeError(w, session.ErrNoDocument)
		return
	}
	start, end = chatRange(sess, start, end)
	key, turns, err := s.assistant.Transcript(sess, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"key":        key,
		"start":      start,
		"end":        end,
		"transcript": turns,
	})
}

type chatRequest struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Message string `json:"message"`
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if !sess.Loaded() {
		writeError(w, session.ErrNoDocument)
		return
	}
	start, end := chatRange(sess, req.Start, req.End)
	reply, err := s.assistant.Chat(r.Context(), sess, start, end, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	start, end, err := queryRange(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !sess.Loaded() {
		writeError(w, session.ErrNoDocument)
		return
	}
	start, end = chatRange(sess, start, end)
	if err := s.assistant.ClearChat(sess, start, end); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
