package domain

// Permission is an atomic named capability (e.g. "employee_read").
// Name is the identity; Category is grouping only and never consulted
// by authorization decisions.
type Permission struct {
	ID          string
	Name        string
	Description string
	Category    string
}

// Role is a named bundle of permissions assigned to a user.
type Role struct {
	ID          string
	Name        string
	Description string
	Permissions []Permission

	RequiresAccount bool
	IsDefault       bool
}
