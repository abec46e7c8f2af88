package models

import "strings"

// Role determines which records an identity may see.
type Role string

const (
	RoleOwner     Role = "owner"
	RoleManager   Role = "manager"
	RoleLawyer    Role = "lawyer"
	RoleAssistant Role = "assistant"
)

// ParseRole normalizes a role string from the external store.
// Unknown values are kept verbatim so access checks can reject them.
func ParseRole(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// IsStaff reports whether the role is scoped by office and area.
func (r Role) IsStaff() bool {
	return r == RoleLawyer || r == RoleAssistant
}

// Identity is an authenticated user: who they are and what they may see.
type Identity struct {
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Role     Role     `json:"role"`
	Office   string   `json:"office"`
	Areas    AreaList `json:"areas"`
}

// HasArea reports whether the identity is permitted to work on area.
func (i Identity) HasArea(area string) bool {
	return i.Areas.Contains(area)
}

// IsOwner reports whether the identity holds the top-level owner role.
func (i Identity) IsOwner() bool {
	return i.Role == RoleOwner
}
