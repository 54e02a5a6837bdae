package auth

// Package auth contains domain-level types for authentication and identity.
// It is pure and free of framework/adapter concerns.

import "strings"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	// RoleEditor grants full CRUD access to stories, media, and accounts.
	RoleEditor Role = "editor"
	// RoleReader grants read-only access.
	RoleReader Role = "reader"
)

// ParseRole normalizes a stored role value. Anything other than the literal
// "reader" maps to editor, matching the allow-list contract.
func ParseRole(value string) Role {
	if strings.EqualFold(strings.TrimSpace(value), string(RoleReader)) {
		return RoleReader
	}
	return RoleEditor
}

// CanEdit reports whether the role permits mutating operations.
func (r Role) CanEdit() bool { return r == RoleEditor }

// Identity is the per-request authenticated principal. It is produced by the
// auth gate and never kept beyond request scope.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Anonymous returns the sentinel identity used for public-view requests.
func Anonymous() Identity {
	return Identity{Email: "", Role: RoleReader}
}

// IsAnonymous reports whether the identity is the public-view sentinel.
func (i Identity) IsAnonymous() bool { return i.Email == "" }
