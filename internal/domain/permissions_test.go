package domain

import (
	"reflect"
	"testing"
)

func perm(name string) Permission {
	return Permission{ID: "id-" + name, Name: name}
}

func TestResolve_UnionDeduplicates(t *testing.T) {
	t.Parallel()

	u := User{
		Role: &Role{
			Name:        "manager",
			Permissions: []Permission{perm("employee_read"), perm("employee_write"), perm("team_read")},
		},
		CustomPermissions: []Permission{perm("employee_write"), perm("payroll_read")},
	}

	g := Resolve(u)
	if g.RoleName != "manager" {
		t.Fatalf("expected role manager, got %q", g.RoleName)
	}

	want := []string{"employee_read", "employee_write", "payroll_read", "team_read"}
	if got := g.Permissions.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestResolve_FullOverlap_NoDuplicates(t *testing.T) {
	t.Parallel()

	u := User{
		Role:              &Role{Name: "viewer", Permissions: []Permission{perm("a"), perm("b")}},
		CustomPermissions: []Permission{perm("a"), perm("b")},
	}

	g := Resolve(u)
	if len(g.Permissions) != 2 {
		t.Fatalf("expected 2 permissions, got %d", len(g.Permissions))
	}
}

func TestResolve_NoRole_EmptySetNoError(t *testing.T) {
	t.Parallel()

	g := Resolve(User{})
	if g.RoleName != "" {
		t.Fatalf("expected empty role name, got %q", g.RoleName)
	}
	if len(g.Permissions) != 0 {
		t.Fatalf("expected empty set, got %v", g.Permissions.Names())
	}
}

func TestResolve_CustomOnly(t *testing.T) {
	t.Parallel()

	g := Resolve(User{CustomPermissions: []Permission{perm("x")}})
	if !g.Permissions.Has("x") {
		t.Fatalf("expected custom permission in set")
	}
}

func TestPermissionSet_HasAll(t *testing.T) {
	t.Parallel()

	s := PermissionSet{"a": perm("a"), "b": perm("b")}

	if !s.HasAll("a", "b") {
		t.Fatalf("expected HasAll(a,b) true")
	}
	if s.HasAll("a", "c") {
		t.Fatalf("expected HasAll(a,c) false")
	}
	if !s.HasAll() {
		t.Fatalf("empty requirement must be satisfied")
	}
}

func TestGrants_RoleIn(t *testing.T) {
	t.Parallel()

	g := Grants{RoleName: "admin"}
	if !g.RoleIn("manager", "admin") {
		t.Fatalf("expected role match")
	}
	if g.RoleIn("manager") {
		t.Fatalf("expected no match")
	}
	if (Grants{}).RoleIn("admin") {
		t.Fatalf("user without role must match nothing")
	}
}
