package model

import "time"

// MaxEventImages caps the number of image URLs per event.
const MaxEventImages = 3

// Category is the closed set of event categories.
type Category string

const (
	CategoryTech    Category = "Tech"
	CategoryNonTech Category = "NonTech"
	CategoryFood    Category = "Food"
)

// Valid reports whether c is a known category. Unrecognized values are rejected
// at create/edit time.
func (c Category) Valid() bool {
	switch c {
	case CategoryTech, CategoryNonTech, CategoryFood:
		return true
	default:
		return false
	}
}

// Registerable reports whether students may register for events of this category.
// Food events are informational only and never show a register action.
func (c Category) Registerable() bool {
	return c == CategoryTech || c == CategoryNonTech
}

// GeoPoint is a geographic coordinate.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Venue is the structured venue of an event. All fields are free text.
type Venue struct {
	Building string `json:"building"`
	Floor    string `json:"floor"`
	Room     string `json:"room"`
}

// OrganizerInfo is the contact block shown on an event.
type OrganizerInfo struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
}

// Event is a published campus event. CreatedBy and CreatedAt are immutable after
// creation; Location may be absent on legacy records.
type Event struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Category      Category      `json:"category"`
	DateTime      time.Time     `json:"date_time"`
	Venue         Venue         `json:"venue"`
	OrganizerInfo OrganizerInfo `json:"organizer_info"`
	ImageURLs     []string      `json:"image_urls"`
	Location      *GeoPoint     `json:"location,omitempty"`
	CreatedBy     string        `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
}

// EventParams carries the mutable fields for creating or editing an event.
type EventParams struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Category      Category      `json:"category"`
	DateTime      time.Time     `json:"date_time"`
	Venue         Venue         `json:"venue"`
	OrganizerInfo OrganizerInfo `json:"organizer_info"`
	ImageURLs     []string      `json:"image_urls"`
	Location      *GeoPoint     `json:"location,omitempty"`
}

// Validate checks the params for a create (creating=true) or edit request.
// Location is required only on create; an organizer may later edit an event
// without touching its coordinate.
func (p *EventParams) Validate(creating bool) error {
	var errs []FieldError

	if p.Name == "" {
		errs = append(errs, FieldError{"name", "required"})
	}
	if p.Description == "" {
		errs = append(errs, FieldError{"description", "required"})
	}
	if !p.Category.Valid() {
		errs = append(errs, FieldError{"category", "must be one of Tech, NonTech, Food"})
	}
	if creating && p.Location == nil {
		errs = append(errs, FieldError{"location", "required"})
	}
	if len(p.ImageURLs) > MaxEventImages {
		errs = append(errs, FieldError{"image_urls", "at most 3 images"})
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	return nil
}
