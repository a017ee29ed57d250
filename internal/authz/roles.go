// internal/authz/roles.go
package authz

import (
	"strings"

	"fitclub/internal/apperr"
)

// Role represents a member's capability tier.
type Role string

const (
	RoleMember     Role = "MEMBER"
	RoleLeader     Role = "LEADER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Allowed-role sets for protected operations. Every gated operation names
// its set explicitly; capability is never inferred from hierarchy depth,
// because SUPER_ADMIN-only operations must not be reachable by ADMIN.
var (
	AdminOnly      = []Role{RoleAdmin, RoleSuperAdmin}
	SuperAdminOnly = []Role{RoleSuperAdmin}
	LeaderUp       = []Role{RoleLeader, RoleAdmin, RoleSuperAdmin}
	AnyMember      = []Role{RoleMember, RoleLeader, RoleAdmin, RoleSuperAdmin}
)

// IsValid reports whether r is one of the defined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleLeader, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// RequireAnyOf checks that current is a member of allowed. It is an exact
// set membership check.
func RequireAnyOf(current Role, allowed []Role) error {
	for _, role := range allowed {
		if current == role {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, role := range allowed {
		names[i] = string(role)
	}
	return apperr.Forbidden("INSUFFICIENT_ROLE",
		"insufficient permissions: requires one of "+strings.Join(names, ", "))
}
