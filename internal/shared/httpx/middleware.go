package httpx

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"ridematch/internal/shared/logger"

	"github.com/go-chi/chi/v5/middleware"
)

// Recoverer ловит панику обработчика, логирует стек и отвечает 500
func Recoverer(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error(logger.Entry{
					Action:    "panic_recovered",
					Message:   fmt.Sprint(rec),
					RequestID: middleware.GetReqID(r.Context()),
					Error:     &logger.ErrObj{Msg: fmt.Sprint(rec), Stack: string(debug.Stack())},
				})
				RespondError(w, r, logger.Nop(), fmt.Errorf("panic: %v", rec))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger пишет одну запись на запрос
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info(logger.Entry{
				Action:    "http_request",
				Message:   r.Method + " " + r.URL.Path,
				RequestID: middleware.GetReqID(r.Context()),
				Additional: map[string]any{
					"status":      ww.Status(),
					"bytes":       ww.BytesWritten(),
					"duration_ms": time.Since(start).Milliseconds(),
					"remote":      r.RemoteAddr,
				},
			})
		})
	}
}
