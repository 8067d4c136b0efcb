package models

// Role is the access level carried by a user and by its session token.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleLibrarian Role = "librarian"
	RoleStudent   Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLibrarian, RoleStudent:
		return true
	}
	return false
}

// SelfRegistrable reports whether a user may sign up with this role.
// Admin accounts are created by operators only.
func (r Role) SelfRegistrable() bool {
	return r == RoleLibrarian || r == RoleStudent
}

func (r Role) String() string { return string(r) }
