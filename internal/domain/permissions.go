package domain

import "sort"

// PermissionSet is a deduplicated capability set keyed by permission name.
type PermissionSet map[string]Permission

func (s PermissionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// HasAll reports whether every named permission is present (AND semantics).
// An empty requirement list is trivially satisfied.
func (s PermissionSet) HasAll(names ...string) bool {
	for _, n := range names {
		if !s.Has(n) {
			return false
		}
	}
	return true
}

// Names returns the permission names in sorted order for stable output.
func (s PermissionSet) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Grants is the result of permission resolution: the user's role name plus
// the merged capability set. Callers apply either role-membership or
// permission-coverage policies on top without re-deriving data.
type Grants struct {
	RoleName    string
	Permissions PermissionSet
}

// RoleIn reports whether the user's role name is one of the given roles
// (OR semantics). A user without a role matches nothing.
func (g Grants) RoleIn(roles ...string) bool {
	if g.RoleName == "" {
		return false
	}
	for _, r := range roles {
		if r == g.RoleName {
			return true
		}
	}
	return false
}

// Resolve merges role-derived permissions with per-user custom grants into
// one deduplicated set. Pure function of its input: an absent role or an
// absent custom list contributes nothing and is never an error. When the
// same name appears in both sources the role's entry wins; identity is the
// name either way.
func Resolve(u User) Grants {
	set := make(PermissionSet)
	if u.Role != nil {
		for _, p := range u.Role.Permissions {
			set[p.Name] = p
		}
	}
	for _, p := range u.CustomPermissions {
		if _, ok := set[p.Name]; !ok {
			set[p.Name] = p
		}
	}
	return Grants{RoleName: u.RoleName(), Permissions: set}
}
