package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"mycogenesis/internal/logger"
)

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// Renderer renders a named template.
type Renderer interface {
	Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error
}

// Error is a middleware that converts handler errors into user-friendly error
// pages. Requests under /api/ get a JSON body instead.
func Error(log logger.Logger, view Renderer) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					writeError(w, r, view, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			if err := next(w, r); err != nil {
				l := log.With(map[string]interface{}{"path": r.URL.Path, "status": err.Code})
				if err.Code >= http.StatusInternalServerError {
					l.Error(err.Error, err.Message)
				} else {
					l.Warn(err.Message)
				}
				writeError(w, r, view, err.Code, err.Message)
			}
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, view Renderer, code int, message string) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"error": message, "status": code})
		return
	}
	data := map[string]interface{}{
		"StatusCode": code,
		"StatusText": message,
	}
	w.WriteHeader(code)
	if err := view.Render(w, r, "error.html", data); err != nil {
		fmt.Fprintf(w, "%d %s", code, message)
	}
}
