// Package identity owns user accounts: registration with role-specific
// profiles, credential checks, and session issuance. Users live in the
// shared schema because login happens before a tenant is known.
package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinova/clinova/internal/platform/auth"
)

// User maps to the shared.users table.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"firstName"`
	LastName     string     `db:"last_name" json:"lastName"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Role         auth.Role  `db:"role" json:"role"`

	// Set only for ADMIN accounts, which own a clinic. Staff and patients
	// carry no tenant of their own.
	TenantID   *string `db:"tenant_id" json:"tenantId,omitempty"`
	TenantName *string `db:"tenant_name" json:"tenantName,omitempty"`

	// Doctor profile.
	Specialization *string `db:"specialization" json:"specialization,omitempty"`
	LicenseNumber  *string `db:"license_number" json:"licenseNumber,omitempty"`

	// Patient profile.
	DateOfBirth *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	BloodType   *string    `db:"blood_type" json:"bloodType,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// RegisterRequest is the wire shape of a registration. The optional fields
// are interpreted per role by the service; the switch over Role is
// exhaustive, so an unknown role is rejected rather than falling through.
type RegisterRequest struct {
	Role      auth.Role `json:"role"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     *string   `json:"phone,omitempty"`

	// ADMIN
	ClinicName string `json:"clinicName,omitempty"`

	// DOCTOR
	Specialization string `json:"specialization,omitempty"`
	LicenseNumber  string `json:"licenseNumber,omitempty"`

	// PATIENT
	DateOfBirth string  `json:"dateOfBirth,omitempty"`
	Gender      string  `json:"gender,omitempty"`
	Address     *string `json:"address,omitempty"`
	BloodType   *string `json:"bloodType,omitempty"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned on successful login.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
