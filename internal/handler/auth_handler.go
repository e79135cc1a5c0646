package handler

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/casbin/casbin/v2"

	"mycogenesis/internal/auth"
	"mycogenesis/internal/logger"
	"mycogenesis/internal/session"
)

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth     *auth.Authenticator
	sessions session.Manager
	enforcer casbin.IEnforcer
	admins   []string
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler. admins are the emails granted
// the admin role on login.
func NewAuthHandler(a *auth.Authenticator, sm session.Manager, e casbin.IEnforcer, admins []string, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: a, sessions: sm, enforcer: e, admins: admins, log: log}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "Login is not available", http.StatusNotFound)
		return
	}
	state, err := randString(16)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	// Store the state in a short-lived cookie to verify on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "state",
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
	})
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// handleCallback is the redirect URL for the OIDC provider.
// It handles the code exchange and token verification, then signs the user
// in by storing the token subject in the session.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		http.Error(w, "Login is not available", http.StatusNotFound)
		return
	}
	stateCookie, err := r.Cookie("state")
	if err != nil {
		http.Error(w, "state cookie not found", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "state did not match", http.StatusBadRequest)
		return
	}

	subject, claims, err := h.auth.VerifyCode(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.log.Error(err, "OIDC login failed")
		http.Error(w, "Failed to verify login", http.StatusUnauthorized)
		return
	}

	if claims.EmailVerified {
		if _, err := auth.GrantAdmin(h.enforcer, h.admins, subject, claims.Email); err != nil {
			h.log.Error(err, "Failed to grant admin role")
		}
	}

	if err := h.sessions.RenewToken(r.Context()); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.sessions.Put(r.Context(), session.KeyUserSubject, subject)
	h.log.With(map[string]interface{}{"subject": subject}).Info("User signed in")

	http.Redirect(w, r, "/admin", http.StatusFound)
}

// handleLogout ends the session.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context()); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
