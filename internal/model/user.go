// Package model defines domain models and data structures.
package model

// Role drives all permission checks. It is fixed at signup; this core never mutates it.
type Role string

const (
	// RoleOrganizer may create, edit and delete events it owns.
	RoleOrganizer Role = "organizer"
	// RoleStudent may view events and register for or cancel registrations.
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOrganizer || r == RoleStudent
}

// User is the acting identity, read-only from this core's perspective.
type User struct {
	UID         string `json:"uid"`
	Role        Role   `json:"role"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
