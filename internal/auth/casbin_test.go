package auth

import (
	"testing"

	"mycogenesis/internal/logger"
)

func TestEnforcer_DefaultPolicies(t *testing.T) {
	e, err := NewEnforcer("", "")
	if err != nil {
		t.Fatalf("NewEnforcer failed: %v", err)
	}
	SeedDefaultPolicies(e, logger.Nop())
	// Seeding twice must not fail or duplicate.
	SeedDefaultPolicies(e, logger.Nop())

	if _, err := e.AddRoleForUser("alice", RoleAdmin); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddRoleForUser("bob", RoleEditor); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		sub, obj, act string
		want          bool
	}{
		{"alice", "/admin", "GET", true},
		{"alice", "/admin/cache/clear", "POST", true},
		{"bob", "/admin", "GET", true},
		{"bob", "/admin/cache/clear", "POST", false},
		{"anonymous", "/admin", "GET", false},
	}
	for _, tt := range tests {
		got, err := e.Enforce(tt.sub, tt.obj, tt.act)
		if err != nil {
			t.Fatalf("Enforce(%s, %s, %s) failed: %v", tt.sub, tt.obj, tt.act, err)
		}
		if got != tt.want {
			t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.sub, tt.obj, tt.act, got, tt.want)
		}
	}
}

func TestGrantAdmin(t *testing.T) {
	e, err := NewEnforcer("", "")
	if err != nil {
		t.Fatalf("NewEnforcer failed: %v", err)
	}
	admins := []string{"Owner@Myco.example"}

	granted, err := GrantAdmin(e, admins, "sub-1", "owner@myco.example")
	if err != nil || !granted {
		t.Fatalf("expected admin to be granted, got %v %v", granted, err)
	}
	if has, _ := e.HasRoleForUser("sub-1", RoleAdmin); !has {
		t.Error("expected sub-1 to have the admin role")
	}

	granted, _ = GrantAdmin(e, admins, "sub-2", "visitor@example.com")
	if granted {
		t.Error("expected no grant for an unlisted email")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{"admin", "editor", "user"} {
		if !ValidRole(r) {
			t.Errorf("expected %q to be valid", r)
		}
	}
	if ValidRole("root") {
		t.Error("expected root to be invalid")
	}
}
