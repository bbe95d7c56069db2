package auth

// UserRole is the user's role
type UserRole string

const (
	// RoleCustomer is the default role for self-registered users.
	RoleCustomer UserRole = "customer"
	// RoleVendor is a merchant account role.
	RoleVendor UserRole = "vendor"
	// RoleAdmin has full access to user management.
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleCustomer,
		RoleVendor,
		RoleAdmin,
	}
}

// RoleIn reports whether role is a member of the allowed set.
func RoleIn(role UserRole, allowed ...UserRole) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
