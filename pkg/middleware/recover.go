package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/fornello/pizzeria/pkg/logger"
	"github.com/fornello/pizzeria/pkg/response"
)

// Recovery catches any panic in downstream handlers, logs the stack
// trace, and returns a 500 envelope to the client. Add it early in the
// chain so it wraps all other middleware and handlers.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					"error", fmt.Sprintf("%v", err),
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
				)
				response.ServerError(w, "Server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
