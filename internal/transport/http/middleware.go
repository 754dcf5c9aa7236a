package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// statusResponseWriter обёртка для http.ResponseWriter, чтобы захватывать статус-код
// и передавать его дальше
type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader сохраняет статус и вызывает оригинальный WriteHeader
func (w *statusResponseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware пишет в структурированный лог каждый HTTP-запрос и панику.
// Паника логируется и пробрасывается дальше.
func LoggingMiddleware(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			srw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				if rec := recover(); rec != nil {
					log.Error().
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Int("status", http.StatusInternalServerError).
						Int64("duration_ms", time.Since(start).Milliseconds()).
						Interface("panic", rec).
						Msg("panic while serving request")
					panic(rec)
				}
			}()
			next.ServeHTTP(srw, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", srw.status).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("request")
		})
	}
}
