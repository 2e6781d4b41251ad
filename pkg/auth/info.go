// Package auth keeps the identity of the signed in driver between commands.
package auth

import "strings"

// Role of the local user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole returns the role for s or an empty role when s is unknown.
func ParseRole(s string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return ""
	}
	return r
}

// Info is the persisted identity. Both fields are optional.
type Info struct {
	MotoristaID string `json:"motoristaId,omitempty" yaml:"motoristaId,omitempty"`
	Role        Role   `json:"role,omitempty" yaml:"role,omitempty"`
}

// IsAdmin reports whether the stored role is admin.
func (i Info) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IsEmpty reports whether nothing is stored.
func (i Info) IsEmpty() bool {
	return i.MotoristaID == "" && i.Role == ""
}

// merge overlays the non-empty fields of next on i.
func (i Info) merge(next Info) Info {
	if next.MotoristaID != "" {
		i.MotoristaID = next.MotoristaID
	}
	if next.Role != "" {
		i.Role = next.Role
	}
	return i
}
