package auth

// Role is the closed set of account roles. Values are part of the wire
// contract with the UI and must not change.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleDoctor       Role = "DOCTOR"
	RoleReceptionist Role = "RECEPTIONIST"
	RolePatient      Role = "PATIENT"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist, RolePatient:
		return true
	}
	return false
}

// Staff reports whether the role belongs to clinic staff (everything except
// PATIENT).
func (r Role) Staff() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist:
		return true
	case RolePatient:
		return false
	}
	return false
}
