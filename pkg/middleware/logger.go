package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewStructuredLogger is a custom middleware that provides structured logging for requests.
func NewStructuredLogger(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			tww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			t_start := time.Now()
			defer func() {
				status := tww.Status()
				latency := time.Since(t_start)

				event := logger.Info()
				if status >= 500 {
					event = logger.Error()
				}

				event.
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Int("status", status).
					Int("bytes", tww.BytesWritten()).
					Dur("latency", latency).
					Msg("request completed")
			}()

			next.ServeHTTP(tww, r)
		}
		return http.HandlerFunc(fn)
	}
}
