package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dgallion1/pdfmark/internal/assistant"
	"github.com/dgallion1/pdfmark/internal/llm"
	"github.com/dgallion1/pdfmark/internal/session"
)

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to a status code.
func writeError(w http.ResponseWriter, err error) {
	var (
		openErr  *session.DocumentOpenError
		rangeErr *session.InvalidRangeError
		convErr  *session.ConversionError
		provErr  *llm.ProviderError
	)
	switch {
	case errors.Is(err, session.ErrNoDocument):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, assistant.ErrEmptyMessage):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &rangeErr), errors.As(err, &openErr):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &provErr):
		jsonError(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &convErr):
		jsonError(w, err.Error(), http.StatusInternalServerError)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}
