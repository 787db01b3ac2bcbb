// Package service provides business logic layer implementations.
package service

import (
	"context"
	"time"

	"github.com/campushub/eventmap/internal/model"
)

// EventService defines the role-gated event lifecycle. All mutations check the
// actor's role and ownership before any write attempt; students and
// non-owning organizers get read-only access.
type EventService interface {
	Create(ctx context.Context, actor *model.User, params *model.EventParams) (*model.Event, error)
	Update(ctx context.Context, actor *model.User, id string, params *model.EventParams) (*model.Event, error)
	Delete(ctx context.Context, actor *model.User, id string, confirmed bool) error
	Get(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	ListByOrganizer(ctx context.Context, actor *model.User) ([]*model.Event, error)
	AttachImage(ctx context.Context, actor *model.User, id string, data []byte) (*model.Event, error)
}

// RegistrationService defines the registration ledger operations.
type RegistrationService interface {
	IsRegistered(ctx context.Context, userID, eventID string) (bool, error)
	Register(ctx context.Context, actor *model.User, eventID string) (*model.Registration, error)
	Cancel(ctx context.Context, userID, eventID string) error
	ListByEvent(ctx context.Context, actor *model.User, eventID string) ([]*model.Registration, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
}

// ReminderService schedules point-in-time reminders for a registered event.
type ReminderService interface {
	Schedule(ctx context.Context, userID string, event *model.Event, now time.Time) ([]*model.Reminder, error)
}

// ReminderDispatchService publishes due reminders to the notification stream.
type ReminderDispatchService interface {
	DispatchDue(ctx context.Context, limit int) error
	PurgeDelivered(ctx context.Context, olderThan time.Duration) (int64, error)
}
