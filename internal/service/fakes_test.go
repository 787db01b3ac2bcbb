package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campushub/eventmap/internal/model"
)

// In-memory repository fakes. They mirror the contracts documented on the
// repository interfaces, including the sentinel errors.

type fakeEventRepo struct {
	events map[string]*model.Event
	err    error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[string]*model.Event)}
}

func (f *fakeEventRepo) Create(_ context.Context, params *model.EventParams, createdBy string) (*model.Event, error) {
	if f.err != nil {
		return nil, f.err
	}

	createdAt := time.Now().UTC()
	dateTime := params.DateTime
	if dateTime.IsZero() {
		dateTime = createdAt
	}

	event := &model.Event{
		ID:            uuid.NewString(),
		Name:          params.Name,
		Description:   params.Description,
		Category:      params.Category,
		DateTime:      dateTime,
		Venue:         params.Venue,
		OrganizerInfo: params.OrganizerInfo,
		ImageURLs:     params.ImageURLs,
		Location:      params.Location,
		CreatedBy:     createdBy,
		CreatedAt:     createdAt,
	}
	f.events[event.ID] = event

	return event, nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if f.err != nil {
		return nil, f.err
	}

	event, ok := f.events[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}

	clone := *event

	return &clone, nil
}

func (f *fakeEventRepo) Update(_ context.Context, id string, params *model.EventParams) (*model.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, model.ErrEventNotFound
	}

	event.Name = params.Name
	event.Description = params.Description
	event.Category = params.Category
	if !params.DateTime.IsZero() {
		event.DateTime = params.DateTime
	}
	event.Venue = params.Venue
	event.OrganizerInfo = params.OrganizerInfo
	event.ImageURLs = params.ImageURLs
	if params.Location != nil {
		event.Location = params.Location
	}

	clone := *event

	return &clone, nil
}

func (f *fakeEventRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return model.ErrEventNotFound
	}
	delete(f.events, id)

	return nil
}

func (f *fakeEventRepo) List(_ context.Context) ([]*model.Event, error) {
	var out []*model.Event
	for _, event := range f.events {
		out = append(out, event)
	}

	return out, nil
}

func (f *fakeEventRepo) ListByOrganizer(_ context.Context, uid string) ([]*model.Event, error) {
	var out []*model.Event
	for _, event := range f.events {
		if event.CreatedBy == uid {
			out = append(out, event)
		}
	}

	return out, nil
}

type fakeRegistrationRepo struct {
	regs map[string]*model.Registration // keyed userID|eventID
	err  error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: make(map[string]*model.Registration)}
}

func regKey(userID, eventID string) string { return userID + "|" + eventID }

func (f *fakeRegistrationRepo) Create(_ context.Context, params *model.CreateRegistrationParams) (*model.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}

	key := regKey(params.UserID, params.EventID)
	if _, ok := f.regs[key]; ok {
		return nil, model.ErrAlreadyRegistered
	}

	reg := &model.Registration{
		ID:           uuid.NewString(),
		UserID:       params.UserID,
		EventID:      params.EventID,
		Name:         params.Name,
		Email:        params.Email,
		RegisteredAt: time.Now().UTC(),
	}
	f.regs[key] = reg

	return reg, nil
}

func (f *fakeRegistrationRepo) Get(_ context.Context, userID, eventID string) (*model.Registration, error) {
	if f.err != nil {
		return nil, f.err
	}

	reg, ok := f.regs[regKey(userID, eventID)]
	if !ok {
		return nil, nil
	}

	return reg, nil
}

func (f *fakeRegistrationRepo) Delete(_ context.Context, userID, eventID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}

	key := regKey(userID, eventID)
	_, ok := f.regs[key]
	delete(f.regs, key)

	return ok, nil
}

func (f *fakeRegistrationRepo) ListByEvent(_ context.Context, eventID string) ([]*model.Registration, error) {
	var out []*model.Registration
	for _, reg := range f.regs {
		if reg.EventID == eventID {
			out = append(out, reg)
		}
	}

	return out, nil
}

func (f *fakeRegistrationRepo) CountByEvent(_ context.Context, eventID string) (int64, error) {
	var count int64
	for _, reg := range f.regs {
		if reg.EventID == eventID {
			count++
		}
	}

	return count, nil
}

type fakeReminderRepo struct {
	reminders []*model.Reminder
	err       error
}

func (f *fakeReminderRepo) Create(_ context.Context, params *model.CreateReminderParams) (*model.Reminder, error) {
	if f.err != nil {
		return nil, f.err
	}

	rem := &model.Reminder{
		ID:        uuid.NewString(),
		UserID:    params.UserID,
		EventID:   params.EventID,
		TriggerAt: params.TriggerAt,
		Title:     params.Title,
		Body:      params.Body,
		CreatedAt: time.Now().UTC(),
	}
	f.reminders = append(f.reminders, rem)

	return rem, nil
}

func (f *fakeReminderRepo) GetDue(_ context.Context, now time.Time, limit int) ([]*model.Reminder, error) {
	var due []*model.Reminder
	for _, rem := range f.reminders {
		if rem.DeliveredAt == nil && !rem.TriggerAt.After(now) {
			due = append(due, rem)
			if len(due) == limit {
				break
			}
		}
	}

	return due, nil
}

func (f *fakeReminderRepo) MarkDelivered(_ context.Context, id string, at time.Time) error {
	for _, rem := range f.reminders {
		if rem.ID == id {
			rem.DeliveredAt = &at
			return nil
		}
	}

	return fmt.Errorf("reminder %s not found", id)
}

func (f *fakeReminderRepo) PurgeDelivered(_ context.Context, before time.Time) (int64, error) {
	var kept []*model.Reminder
	var purged int64
	for _, rem := range f.reminders {
		if rem.DeliveredAt != nil && rem.DeliveredAt.Before(before) {
			purged++
			continue
		}
		kept = append(kept, rem)
	}
	f.reminders = kept

	return purged, nil
}

// fakeTransactionManager runs fn directly; the fakes have no transactions.
type fakeTransactionManager struct{}

func (fakeTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// failingReminderService always fails; used to prove scheduling is best-effort.
type failingReminderService struct{}

func (failingReminderService) Schedule(context.Context, string, *model.Event, time.Time) ([]*model.Reminder, error) {
	return nil, errors.New("notification store unavailable")
}

type fakeObjectStorage struct {
	uploads int
	err     error
}

func (f *fakeObjectStorage) Upload(_ context.Context, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads++

	return fmt.Sprintf("file:///images/%d.jpg", f.uploads), nil
}
