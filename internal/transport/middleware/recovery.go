package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mkovalev/mybooks-backend/pkg/ctxutil"
)

// Recovery converts a handler panic into a 500 and an error log carrying the
// stack and the request id. http.ErrAbortHandler is re-raised untouched: the
// server uses it to abort a response on purpose and logging it as a panic
// would be noise.
func Recovery(logger *slog.Logger) Middleware {
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

				logger.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("request_id", ctxutil.RequestIDFromCtx(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
