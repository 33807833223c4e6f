package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/pdfmark/internal/session"
	"github.com/go-chi/chi/v5/middleware"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "pdfmark_session"

type ctxKey struct{}

// SessionMiddleware resolves the client's session from its cookie, creating
// one when the cookie is missing or the session expired. The session is
// locked for the rest of the request so interactions never interleave.
func SessionMiddleware(store *session.Store, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sess *session.Session
			if c, err := r.Cookie(SessionCookie); err == nil {
				sess, _ = store.Get(c.Value)
			}
			if sess == nil {
				sess = store.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			sess.Lock()
			defer sess.Unlock()
			// Conversions and provider calls run to completion even when the
			// client goes away; a canceled batch would be cached as failed.
			ctx := context.WithValue(context.WithoutCancel(r.Context()), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFrom returns the session attached by SessionMiddleware.
func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(ctxKey{}).(*session.Session)
	return sess
}

// RequestLogger logs incoming requests.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
