package model

// Role names stored on User.Role.
const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// ValidRole reports whether role is one a user may sign up with.
func ValidRole(role string) bool {
	switch role {
	case RoleDoctor, RolePatient:
		return true
	}
	return false
}
