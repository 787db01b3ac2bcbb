package model

import "time"

// Registration is a student's commitment record to a specific event. At most one
// exists per (UserID, EventID) pair. Name and Email are a snapshot of the
// registrant taken at registration time; later profile changes are not tracked.
type Registration struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	EventID      string    `json:"event_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// CreateRegistrationParams represents parameters for creating a new registration.
type CreateRegistrationParams struct {
	UserID  string
	EventID string
	Name    string
	Email   string
}
