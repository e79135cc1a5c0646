package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Kind is the coarse category of a failed operation.
type Kind int

const (
	KindUnknown Kind = iota
	KindCMS
	KindAuth
	KindDatabase
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindCMS:
		return "cms"
	case KindAuth:
		return "auth"
	case KindDatabase:
		return "database"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

var databaseMarkers = []string{"firestore/", "permissiondenied", "permission-denied", "code = unavailable", "sql: ", "database is locked"}

var networkMarkers = []string{"fetch", "network", "timeout", "deadline exceeded", "connection refused", "connection reset", "no such host", "eof"}

// Classify maps an error to a Kind. Vendor prefixes win over generic
// network symptoms, so a CMS timeout is still a CMS error.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "sanity"):
		return KindCMS
	case strings.Contains(msg, "auth/"):
		return KindAuth
	case containsAny(msg, databaseMarkers):
		return KindDatabase
	case containsAny(msg, networkMarkers):
		return KindNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	return KindUnknown
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying (bad request, not found...).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent or carries a
// Retryable() method that returns false.
func IsPermanent(err error) bool {
	var p *permanentError
	if errors.As(err, &p) {
		return true
	}
	var r interface{ Retryable() bool }
	return errors.As(err, &r) && !r.Retryable()
}
