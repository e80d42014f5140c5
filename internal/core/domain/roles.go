package domain

// Role is the closed set of staff roles known to the system.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleClerk   Role = "CLERK"
	RoleAuditor Role = "AUDITOR"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClerk, RoleAuditor:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole maps a stored role string onto the closed enumeration.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Authorize checks a role against the set of roles allowed for an
// operation. It is a pure function with no side effects and must only be
// called after token verification has succeeded.
func Authorize(role Role, allowed ...Role) error {
	if !role.Valid() {
		return ErrForbidden
	}
	for _, a := range allowed {
		if role == a {
			return nil
		}
	}
	return ErrForbidden
}

// Convenience role sets used by the HTTP layer.
var (
	AdminRoles        = []Role{RoleAdmin}
	ClerkOrAdminRoles = []Role{RoleClerk, RoleAdmin}
	AllRoles          = []Role{RoleAdmin, RoleClerk, RoleAuditor}
)
