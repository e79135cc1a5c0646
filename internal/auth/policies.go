package auth

import (
	"fmt"
	"slices"
	"strings"

	"github.com/casbin/casbin/v2"

	"mycogenesis/internal/logger"
)

// Roles known to the site.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleUser   = "user"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleEditor || role == RoleUser
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	// Editors can look at the admin dashboard; admins can also clear caches.
	policies := [][]string{
		{RoleEditor, "/admin", "GET"},
		{RoleAdmin, "/admin/cache/clear", "POST"},
	}
	for _, p := range policies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	if has, _ := e.HasRoleForUser(RoleAdmin, RoleEditor); !has {
		if _, err := e.AddRoleForUser(RoleAdmin, RoleEditor); err != nil {
			log.Error(err, "Failed to add role 'admin' -> 'editor'")
		}
	}
	log.Info("Policy seeding complete.")
}

// GrantAdmin gives subject the admin role when email is listed in admins.
func GrantAdmin(e casbin.IEnforcer, admins []string, subject, email string) (bool, error) {
	if email == "" || !slices.ContainsFunc(admins, func(a string) bool { return strings.EqualFold(a, email) }) {
		return false, nil
	}
	if has, _ := e.HasRoleForUser(subject, RoleAdmin); has {
		return true, nil
	}
	if _, err := e.AddRoleForUser(subject, RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
