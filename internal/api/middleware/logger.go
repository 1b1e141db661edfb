package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	pkgmw "github.com/superagent-ai/superagent/console/pkg/middleware"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Logger logs one line per request. 4xx responses log at Warn, 5xx at Error.
// The subject is read after the handler chain ran, so it is only present for
// routes behind the auth middleware.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		holder := &identityHolder{}

		next.ServeHTTP(rw, r.WithContext(withIdentityHolder(r.Context(), holder)))

		event := log.Info()
		if rw.statusCode >= 400 {
			event = log.Warn()
		}
		if rw.statusCode >= 500 {
			event = log.Error()
		}
		if holder.subject != "" {
			event = event.Str("subject", holder.subject).Str("auth", holder.provider)
		}

		event.
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Int("bytes", rw.bytes).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("request")
	})
}

// identityHolder lets the auth middleware, which runs deeper in the chain,
// report the caller back to Logger.
type identityHolder struct {
	subject  string
	provider string
}

type holderKey struct{}

func withIdentityHolder(ctx context.Context, h *identityHolder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

func recordIdentity(r *http.Request) {
	h, ok := r.Context().Value(holderKey{}).(*identityHolder)
	if !ok {
		return
	}
	if id := pkgmw.GetIdentity(r.Context()); id != nil {
		h.subject = id.Subject
		h.provider = id.Provider
	}
}
