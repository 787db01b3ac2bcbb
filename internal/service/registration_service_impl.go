package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campushub/eventmap/internal/model"
	"github.com/campushub/eventmap/internal/repository"
)

// RegistrationServiceImpl implements RegistrationService.
type RegistrationServiceImpl struct {
	regRepo        repository.RegistrationRepository
	eventRepo      repository.EventRepository
	reminders      ReminderService
	transactionMgr repository.TransactionManager
	now            func() time.Time
}

// NewRegistrationServiceImpl creates a new RegistrationService implementation.
func NewRegistrationServiceImpl(
	regRepo repository.RegistrationRepository,
	eventRepo repository.EventRepository,
	reminders ReminderService,
	transactionMgr repository.TransactionManager,
) *RegistrationServiceImpl {
	return &RegistrationServiceImpl{
		regRepo:        regRepo,
		eventRepo:      eventRepo,
		reminders:      reminders,
		transactionMgr: transactionMgr,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Tests use it to pin "now".
func (s *RegistrationServiceImpl) WithClock(now func() time.Time) *RegistrationServiceImpl {
	s.now = now
	return s
}

// IsRegistered reports whether a registration exists for the pair. The UI
// checks this before offering either the register or the cancel action.
func (s *RegistrationServiceImpl) IsRegistered(ctx context.Context, userID, eventID string) (bool, error) {
	reg, err := s.regRepo.Get(ctx, userID, eventID)
	if err != nil {
		return false, err
	}

	return reg != nil, nil
}

// Register creates a registration for the acting student, snapshotting name
// and email at call time, then schedules reminders best-effort: a scheduling
// failure is logged and never rolls the registration back.
func (s *RegistrationServiceImpl) Register(
	ctx context.Context, actor *model.User, eventID string,
) (*model.Registration, error) {
	if actor.Role != model.RoleStudent {
		return nil, &model.PermissionError{Actor: actor.UID, Action: "register for events"}
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !event.Category.Registerable() {
		return nil, model.ErrNotRegisterable
	}

	var created *model.Registration

	err = s.transactionMgr.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.regRepo.Get(ctx, actor.UID, eventID)
		if err != nil {
			return fmt.Errorf("check existing registration: %w", err)
		}
		if existing != nil {
			return model.ErrAlreadyRegistered
		}

		created, err = s.regRepo.Create(ctx, &model.CreateRegistrationParams{
			UserID:  actor.UID,
			EventID: eventID,
			Name:    actor.DisplayName,
			Email:   actor.Email,
		})

		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.reminders.Schedule(ctx, actor.UID, event, s.now()); err != nil {
		schedErr := &model.SchedulingError{EventID: eventID, Err: err}
		slog.Error("reminder scheduling failed after registration",
			slog.String("user_id", actor.UID),
			slog.String("event_id", eventID),
			slog.String("error", schedErr.Error()),
		)
	}

	return created, nil
}

// Cancel removes the registration for the pair. Cancelling a non-existent
// registration is a no-op, not an error. Already-scheduled reminders are not
// retracted.
func (s *RegistrationServiceImpl) Cancel(ctx context.Context, userID, eventID string) error {
	_, err := s.regRepo.Delete(ctx, userID, eventID)

	return err
}

// ListByEvent returns the registered students for an event the actor organizes.
func (s *RegistrationServiceImpl) ListByEvent(
	ctx context.Context, actor *model.User, eventID string,
) ([]*model.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if actor.Role != model.RoleOrganizer || event.CreatedBy != actor.UID {
		return nil, &model.PermissionError{Actor: actor.UID, Action: "list registrations for this event"}
	}

	return s.regRepo.ListByEvent(ctx, eventID)
}

// CountByEvent returns the current registration count for an event.
func (s *RegistrationServiceImpl) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	return s.regRepo.CountByEvent(ctx, eventID)
}

var _ RegistrationService = (*RegistrationServiceImpl)(nil)
