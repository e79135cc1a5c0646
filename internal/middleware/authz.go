package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"

	"mycogenesis/internal/session"
)

// Authorizer creates a new middleware for authorization.
// It checks the user's permissions using Casbin based on session data.
// Anonymous visitors that are denied are sent to the login page.
func Authorizer(e casbin.IEnforcer, sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := sm.GetString(r.Context(), session.KeyUserSubject)
			if subject == "" {
				subject = AnonymousSubject
			}

			roles, _ := e.GetImplicitRolesForUser(subject)
			r = r.WithContext(SetUserInfo(r.Context(), &UserInfo{Subject: subject, Roles: roles}))

			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				http.Error(w, "Authorization error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				if subject == AnonymousSubject && r.Method == http.MethodGet {
					http.Redirect(w, r, "/auth/login", http.StatusFound)
					return
				}
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
