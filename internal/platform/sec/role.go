// Copyright (c) 2026 Questline. All rights reserved.
// Author: dev@questline.app

package sec

// # User Roles

// Role represents an authorization grant attached to an account.
type Role string

const (
	// Unrestricted access to admin-only operations
	RoleAdmin Role = "admin"

	// Default role for standard registered users
	RoleUser Role = "user"
)

// DefaultRoles is the role set assigned at registration.
func DefaultRoles() []Role {
	return []Role{RoleUser}
}

// # Role Set Helpers

// HasRole reports whether the role set contains the target role.
func HasRole(roles []Role, target Role) bool {
	for _, role := range roles {
		if role == target {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role set grants admin access.
func IsAdmin(roles []Role) bool {
	return HasRole(roles, RoleAdmin)
}

// RolesToStrings converts a role set to its wire representation.
func RolesToStrings(roles []Role) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}

// RolesFromStrings converts a wire role set back to typed roles.
func RolesFromStrings(values []string) []Role {
	out := make([]Role, 0, len(values))
	for _, value := range values {
		out = append(out, Role(value))
	}
	return out
}
