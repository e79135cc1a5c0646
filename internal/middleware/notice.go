package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"mycogenesis/internal/resilience"
	"mycogenesis/internal/session"
)

const noticeContextKey = contextKey("notice")

// Notices moves a flashed notice out of the session into the request
// context, so it is shown exactly once.
func Notices(sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := sm.PopString(r.Context(), session.KeyNotice)
			if raw != "" {
				var n resilience.Notice
				if err := json.Unmarshal([]byte(raw), &n); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), noticeContextKey, &n))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Flash stores a notice for the next page the visitor sees.
func Flash(ctx context.Context, sm session.Manager, n resilience.Notice) {
	raw, err := json.Marshal(n)
	if err != nil {
		return
	}
	sm.Put(ctx, session.KeyNotice, string(raw))
}

// FlashedNotice returns the notice moved into ctx by Notices, if any.
func FlashedNotice(ctx context.Context) *resilience.Notice {
	n, _ := ctx.Value(noticeContextKey).(*resilience.Notice)
	return n
}
