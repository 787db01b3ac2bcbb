// Package repository provides data access interfaces and implementations.
package repository

import (
	"context"
	"time"

	"github.com/campushub/eventmap/internal/model"
)

// UserRepository defines methods for user data access. Roles are fixed at
// signup; there is no update.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, uid string) (*model.User, error)
}

// EventRepository defines methods for event data access. The store assigns
// the event ID and creation timestamp.
type EventRepository interface {
	Create(ctx context.Context, params *model.EventParams, createdBy string) (*model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, id string, params *model.EventParams) (*model.Event, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*model.Event, error)
	ListByOrganizer(ctx context.Context, uid string) ([]*model.Event, error)
}

// RegistrationRepository defines methods for the registration ledger.
// Create returns model.ErrAlreadyRegistered when a registration already
// exists for the (user, event) pair.
type RegistrationRepository interface {
	Create(ctx context.Context, params *model.CreateRegistrationParams) (*model.Registration, error)
	Get(ctx context.Context, userID, eventID string) (*model.Registration, error)
	Delete(ctx context.Context, userID, eventID string) (bool, error)
	ListByEvent(ctx context.Context, eventID string) ([]*model.Registration, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
}

// ReminderRepository defines methods for scheduled reminder persistence.
type ReminderRepository interface {
	Create(ctx context.Context, params *model.CreateReminderParams) (*model.Reminder, error)
	GetDue(ctx context.Context, now time.Time, limit int) ([]*model.Reminder, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	PurgeDelivered(ctx context.Context, before time.Time) (int64, error)
}

// TransactionManager defines methods for database transaction management.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
