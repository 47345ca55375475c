package auth

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RolePremium, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RoleUser,
		RolePremium,
		RoleModerator,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}

// RoleSet is the normalized set of roles a guard accepts. An empty set
// accepts every authenticated identity.
type RoleSet map[UserRole]struct{}

// NewRoleSet normalizes a list of roles, including the single-role case,
// into a set
func NewRoleSet(roles ...UserRole) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Contains reports membership; an empty set contains every role
func (s RoleSet) Contains(role UserRole) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[role]
	return ok
}
