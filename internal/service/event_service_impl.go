package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campushub/eventmap/internal/model"
	"github.com/campushub/eventmap/internal/repository"
	"github.com/campushub/eventmap/internal/storage"
)

// EventServiceImpl implements EventService.
type EventServiceImpl struct {
	eventRepo repository.EventRepository
	images    storage.ObjectStorage
}

// NewEventServiceImpl creates a new EventService implementation.
func NewEventServiceImpl(eventRepo repository.EventRepository, images storage.ObjectStorage) EventService {
	return &EventServiceImpl{
		eventRepo: eventRepo,
		images:    images,
	}
}

// Create publishes a new event. Only organizers may create; name, description
// and location are required. The store assigns ID and creation time.
func (s *EventServiceImpl) Create(
	ctx context.Context, actor *model.User, params *model.EventParams,
) (*model.Event, error) {
	if actor.Role != model.RoleOrganizer {
		return nil, &model.PermissionError{Actor: actor.UID, Action: "create events"}
	}

	if err := params.Validate(true); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.Create(ctx, params, actor.UID)
	if err != nil {
		return nil, &model.BackendUnavailableError{Op: "create event", Err: err}
	}

	return event, nil
}

// Update overwrites the mutable fields of an event the actor owns. An edit
// that leaves the start time unset keeps the stored one; the zero time never
// reaches the store.
func (s *EventServiceImpl) Update(
	ctx context.Context, actor *model.User, id string, params *model.EventParams,
) (*model.Event, error) {
	current, err := s.requireOwner(ctx, actor, id, "edit this event")
	if err != nil {
		return nil, err
	}

	if err := params.Validate(false); err != nil {
		return nil, err
	}

	if params.DateTime.IsZero() {
		params.DateTime = current.DateTime
	}
	if params.DateTime.IsZero() {
		params.DateTime = current.CreatedAt
	}

	event, err := s.eventRepo.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return nil, err
		}

		return nil, &model.BackendUnavailableError{Op: "update event", Err: err}
	}

	return event, nil
}

// Delete removes an event the actor owns. The UI's destructive-action dialog
// must have been acknowledged. Registrations are not cascaded.
func (s *EventServiceImpl) Delete(ctx context.Context, actor *model.User, id string, confirmed bool) error {
	if !confirmed {
		return model.ErrConfirmationRequired
	}

	if _, err := s.requireOwner(ctx, actor, id, "delete this event"); err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return err
		}

		return &model.BackendUnavailableError{Op: "delete event", Err: err}
	}

	return nil
}

// Get retrieves a single event. Read access is not role-gated.
func (s *EventServiceImpl) Get(ctx context.Context, id string) (*model.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// List returns all published events.
func (s *EventServiceImpl) List(ctx context.Context) ([]*model.Event, error) {
	return s.eventRepo.List(ctx)
}

// ListByOrganizer returns the actor's own events.
func (s *EventServiceImpl) ListByOrganizer(ctx context.Context, actor *model.User) ([]*model.Event, error) {
	if actor.Role != model.RoleOrganizer {
		return nil, &model.PermissionError{Actor: actor.UID, Action: "list organized events"}
	}

	return s.eventRepo.ListByOrganizer(ctx, actor.UID)
}

// AttachImage uploads an image and appends its URL to the event, preserving
// upload order. The cap of 3 is enforced before any upload call is made.
func (s *EventServiceImpl) AttachImage(
	ctx context.Context, actor *model.User, id string, data []byte,
) (*model.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != model.RoleOrganizer || event.CreatedBy != actor.UID {
		return nil, &model.PermissionError{Actor: actor.UID, Action: "attach images to this event"}
	}

	if len(event.ImageURLs) >= model.MaxEventImages {
		return nil, model.ErrImageLimit
	}

	url, err := s.images.Upload(ctx, data)
	if err != nil {
		return nil, &model.BackendUnavailableError{Op: "upload image", Err: err}
	}

	params := &model.EventParams{
		Name:          event.Name,
		Description:   event.Description,
		Category:      event.Category,
		DateTime:      event.DateTime,
		Venue:         event.Venue,
		OrganizerInfo: event.OrganizerInfo,
		ImageURLs:     append(event.ImageURLs, url),
		Location:      event.Location,
	}

	updated, err := s.eventRepo.Update(ctx, id, params)
	if err != nil {
		return nil, &model.BackendUnavailableError{Op: "attach image", Err: err}
	}

	return updated, nil
}

func (s *EventServiceImpl) requireOwner(
	ctx context.Context, actor *model.User, id, action string,
) (*model.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("load event for ownership check: %w", err)
	}

	if actor.Role != model.RoleOrganizer || event.CreatedBy != actor.UID {
		return nil, &model.PermissionError{Actor: actor.UID, Action: action}
	}

	return event, nil
}
