// Package admin manages user roles and profiles in Firebase.
package admin

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"time"

	"mycogenesis/internal/auth"
	"mycogenesis/internal/logger"
)

var (
	ErrUserNotFound = errors.New("admin: user not found")
	ErrInvalidRole  = errors.New("admin: invalid role")
	ErrNotConfirmed = errors.New("admin: deletion not confirmed")
)

// User is an account in the identity provider.
type User struct {
	UID   string
	Email string
}

// Users manages accounts and their custom claims.
type Users interface {
	UserByEmail(ctx context.Context, email string) (User, error)
	SetClaims(ctx context.Context, uid string, claims map[string]interface{}) error
	Delete(ctx context.Context, uid string) error
}

// Profile is a document of the users collection.
type Profile struct {
	UID    string
	Fields map[string]interface{}
}

// Profiles stores user profile documents.
type Profiles interface {
	All(ctx context.Context) ([]Profile, error)
	Merge(ctx context.Context, uid string, fields map[string]interface{}) error
	Delete(ctx context.Context, uid string) error
}

// DefaultPreferences are given to profiles that have none.
func DefaultPreferences() map[string]interface{} {
	return map[string]interface{}{
		"newsletter":    false,
		"notifications": true,
		"theme":         "light",
	}
}

// Service runs the admin commands.
type Service struct {
	users    Users
	profiles Profiles
	log      logger.Logger
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(users Users, profiles Profiles, log logger.Logger) *Service {
	return &Service{users: users, profiles: profiles, log: log, now: time.Now}
}

// SetRole gives the user with email the role as a custom claim and mirrors it
// into the user's profile.
func (s *Service) SetRole(ctx context.Context, email, role string) (User, error) {
	if !auth.ValidRole(role) {
		return User{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	u, err := s.users.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return User{}, err
	}

	claims := map[string]interface{}{
		"role":  role,
		"admin": role == auth.RoleAdmin,
	}
	if err := s.users.SetClaims(ctx, u.UID, claims); err != nil {
		return User{}, fmt.Errorf("set claims for %s: %w", u.UID, err)
	}
	if err := s.profiles.Merge(ctx, u.UID, map[string]interface{}{
		"email":     u.Email,
		"role":      role,
		"updatedAt": s.now(),
	}); err != nil {
		return User{}, fmt.Errorf("update profile %s: %w", u.UID, err)
	}

	s.log.With(map[string]interface{}{"uid": u.UID, "role": role}).Info("Role updated")
	return u, nil
}

// MigrationReport lists what MigrateProfiles changed.
type MigrationReport struct {
	Scanned int
	Updated map[string][]string // uid to the names of the filled fields
}

// MigrateProfiles fills missing fields of every profile. With dryRun
// nothing is written.
func (s *Service) MigrateProfiles(ctx context.Context, dryRun bool) (MigrationReport, error) {
	profiles, err := s.profiles.All(ctx)
	if err != nil {
		return MigrationReport{}, fmt.Errorf("list profiles: %w", err)
	}

	report := MigrationReport{Scanned: len(profiles), Updated: make(map[string][]string)}
	now := s.now()
	for _, p := range profiles {
		fields := MissingFields(p, now)
		if len(fields) == 0 {
			continue
		}
		names := make([]string, 0, len(fields))
		for k := range fields {
			names = append(names, k)
		}
		sort.Strings(names)
		report.Updated[p.UID] = names

		if dryRun {
			continue
		}
		if err := s.profiles.Merge(ctx, p.UID, fields); err != nil {
			return report, fmt.Errorf("update profile %s: %w", p.UID, err)
		}
	}

	s.log.With(map[string]interface{}{
		"scanned": report.Scanned,
		"updated": len(report.Updated),
		"dry_run": dryRun,
	}).Info("Profile migration finished")
	return report, nil
}

// MissingFields returns the fields p needs to be complete. updatedAt is
// set whenever anything else is.
func MissingFields(p Profile, now time.Time) map[string]interface{} {
	out := make(map[string]interface{})

	if isBlank(p.Fields["displayName"]) {
		out["displayName"] = DisplayName(stringField(p.Fields, "email"))
	}
	if isBlank(p.Fields["role"]) {
		out["role"] = auth.RoleUser
	}
	if p.Fields["createdAt"] == nil {
		out["createdAt"] = now
	}

	prefs, _ := p.Fields["preferences"].(map[string]interface{})
	merged := DefaultPreferences()
	maps.Copy(merged, prefs)
	if len(merged) != len(prefs) {
		out["preferences"] = merged
	}

	if len(out) > 0 {
		out["updatedAt"] = now
	}
	return out
}

// DisplayName derives a name from the local part of an email address.
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local = strings.TrimSpace(local); local == "" {
		return "User"
	}
	return local
}

// DeleteAccount removes the profile of the user with email and then the
// account itself. It does nothing unless confirm is set.
func (s *Service) DeleteAccount(ctx context.Context, email string, confirm bool) (User, error) {
	if !confirm {
		return User{}, ErrNotConfirmed
	}
	u, err := s.users.UserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return User{}, err
	}
	if err := s.profiles.Delete(ctx, u.UID); err != nil {
		return User{}, fmt.Errorf("delete profile %s: %w", u.UID, err)
	}
	if err := s.users.Delete(ctx, u.UID); err != nil {
		return User{}, fmt.Errorf("delete user %s: %w", u.UID, err)
	}

	s.log.With(map[string]interface{}{"uid": u.UID}).Warn("Account deleted")
	return u, nil
}

func isBlank(v interface{}) bool {
	s, ok := v.(string)
	return v == nil || (ok && strings.TrimSpace(s) == "")
}

func stringField(fields map[string]interface{}, name string) string {
	s, _ := fields[name].(string)
	return s
}
