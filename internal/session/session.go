// Package session holds per-visitor state: tutorial progress, notices and
// the admin login.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jmoiron/sqlx"

	"mycogenesis/internal/config"
)

// Keys stored in the session.
const (
	KeyUserSubject = "user_subject"
	KeyNotice      = "notice"
	KeyOAuthState  = "oauth_state"
)

// Manager is an interface that abstracts the session management implementation.
// This allows for easier testing and dependency injection.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	Destroy(ctx context.Context) error
	Remove(ctx context.Context, key string)
	RenewToken(ctx context.Context) error
}

var _ Manager = (*scs.SessionManager)(nil)

// New creates the session manager. Sessions live in the SQL database when one
// is configured, otherwise in memory.
func New(cfg config.SessionConfig, secure bool, driver string, db *sqlx.DB) *scs.SessionManager {
	sm := scs.New()
	switch {
	case db != nil && driver == "mysql":
		sm.Store = mysqlstore.New(db.DB)
	case db != nil && driver == "sqlite3":
		sm.Store = sqlite3store.New(db.DB)
	default:
		sm.Store = memstore.New()
	}
	sm.Lifetime = time.Duration(cfg.Lifetime) * time.Hour
	sm.Cookie.Name = "myco_session"
	sm.Cookie.Persist = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	return sm
}
