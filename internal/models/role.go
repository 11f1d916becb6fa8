package models

// Role is the access tier of a user.
type Role string

// Supported roles, lowest rank first
const (
	RoleUser       Role = "user"
	RolePartner    Role = "partner"
	RoleStaff      Role = "staff"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var roleRanks = map[Role]int{
	RoleUser:       1,
	RolePartner:    2,
	RoleStaff:      3,
	RoleAdmin:      4,
	RoleSuperAdmin: 5,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the position of r in the role hierarchy, 0 for unknown roles.
func (r Role) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether r ranks the same as or above min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// HasRole reports whether role is one of allowed.
func HasRole(role Role, allowed ...Role) bool {
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
