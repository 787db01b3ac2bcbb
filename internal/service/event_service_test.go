package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/eventmap/internal/model"
)

func validEventParams() *model.EventParams {
	return &model.EventParams{
		Name:        "Tech Talk",
		Description: "Distributed systems in practice",
		Category:    model.CategoryTech,
		DateTime:    time.Now().Add(48 * time.Hour),
		Venue:       model.Venue{Building: "Main Hall", Floor: "1", Room: "101"},
		OrganizerInfo: model.OrganizerInfo{
			Name:        "Priya",
			PhoneNumber: "9876543210",
		},
		Location: &model.GeoPoint{Latitude: 13.0125, Longitude: 80.236},
	}
}

func newEventFixture() (EventService, *fakeEventRepo, *fakeObjectStorage) {
	eventRepo := newFakeEventRepo()
	images := &fakeObjectStorage{}

	return NewEventServiceImpl(eventRepo, images), eventRepo, images
}

func TestCreateAssignsOwnership(t *testing.T) {
	svc, _, _ := newEventFixture()

	event, err := svc.Create(context.Background(), testOrganizer, validEventParams())
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, testOrganizer.UID, event.CreatedBy)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestCreateStudentForbidden(t *testing.T) {
	svc, eventRepo, _ := newEventFixture()

	_, err := svc.Create(context.Background(), testStudent, validEventParams())

	var permErr *model.PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Empty(t, eventRepo.events)
}

func TestCreateValidation(t *testing.T) {
	svc, eventRepo, _ := newEventFixture()

	tests := []struct {
		name   string
		mutate func(*model.EventParams)
		field  string
	}{
		{"empty name", func(p *model.EventParams) { p.Name = "" }, "name"},
		{"empty description", func(p *model.EventParams) { p.Description = "" }, "description"},
		{"missing location", func(p *model.EventParams) { p.Location = nil }, "location"},
		{"unknown category", func(p *model.EventParams) { p.Category = "Sports" }, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validEventParams()
			tt.mutate(params)

			_, err := svc.Create(context.Background(), testOrganizer, params)

			var valErr *model.ValidationError
			require.ErrorAs(t, err, &valErr)
			require.Len(t, valErr.Fields, 1)
			assert.Equal(t, tt.field, valErr.Fields[0].Field)
			assert.Empty(t, eventRepo.events)
		})
	}
}

func TestDefaultDateTime(t *testing.T) {
	svc, _, _ := newEventFixture()

	params := validEventParams()
	params.DateTime = time.Time{}

	event, err := svc.Create(context.Background(), testOrganizer, params)
	require.NoError(t, err)
	assert.Equal(t, event.CreatedAt, event.DateTime)
}

func TestUpdateByNonOwnerForbidden(t *testing.T) {
	svc, _, _ := newEventFixture()

	event, err := svc.Create(context.Background(), testOrganizer, validEventParams())
	require.NoError(t, err)

	otherOrganizer := &model.User{UID: "org-2", Role: model.RoleOrganizer}
	params := validEventParams()
	params.Name = "Hijacked"

	_, err = svc.Update(context.Background(), otherOrganizer, event.ID, params)

	var permErr *model.PermissionError
	require.ErrorAs(t, err, &permErr)

	unchanged, err := svc.Get(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tech Talk", unchanged.Name)
}

func TestUpdateWithoutLocationKeepsCoordinate(t *testing.T) {
	svc, _, _ := newEventFixture()

	event, err := svc.Create(context.Background(), testOrganizer, validEventParams())
	require.NoError(t, err)

	params := validEventParams()
	params.Name = "Tech Talk v2"
	params.Location = nil

	updated, err := svc.Update(context.Background(), testOrganizer, event.ID, params)
	require.NoError(t, err)
	assert.Equal(t, "Tech Talk v2", updated.Name)
	require.NotNil(t, updated.Location)
	assert.InDelta(t, 13.0125, updated.Location.Latitude, 1e-9)
}

func TestUpdateWithoutDateTimeKeepsStart(t *testing.T) {
	svc, _, _ := newEventFixture()

	start := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	params := validEventParams()
	params.DateTime = start

	event, err := svc.Create(context.Background(), testOrganizer, params)
	require.NoError(t, err)

	edit := validEventParams()
	edit.Name = "Tech Talk v2"
	edit.DateTime = time.Time{}

	updated, err := svc.Update(context.Background(), testOrganizer, event.ID, edit)
	require.NoError(t, err)
	assert.Equal(t, "Tech Talk v2", updated.Name)
	assert.False(t, updated.DateTime.IsZero())
	assert.True(t, updated.DateTime.Equal(start))
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	svc, _, _ := newEventFixture()

	event, err := svc.Create(context.Background(), testOrganizer, validEventParams())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), testOrganizer, event.ID, false)
	require.ErrorIs(t, err, model.ErrConfirmationRequired)

	_, err = svc.Get(context.Background(), event.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), testOrganizer, event.ID, true))

	_, err = svc.Get(context.Background(), event.ID)
	require.ErrorIs(t, err, model.ErrEventNotFound)
}

func TestDeleteByNonOwnerForbidden(t *testing.T) {
	svc, _, _ := newEventFixture()

	event, err := svc.Create(context.Background(), testOrganizer, validEventParams())
	require.NoError(t, err)

	var permErr *model.PermissionError

	err = svc.Delete(context.Background(), testStudent, event.ID, true)
	require.ErrorAs(t, err, &permErr)

	otherOrganizer := &model.User{UID: "org-2", Role: model.RoleOrganizer}
	err = svc.Delete(context.Background(), otherOrganizer, event.ID, true)
	require.ErrorAs(t, err, &permErr)

	_, err = svc.Get(context.Background(), event.ID)
	require.NoError(t, err)
}

func TestAttachImageLimit(t *testing.T) {
	svc, _, images := newEventFixture()

	event, err := svc.Create(context.Background(), testOrganizer, validEventParams())
	require.NoError(t, err)

	for i := 0; i < model.MaxEventImages; i++ {
		event, err = svc.AttachImage(context.Background(), testOrganizer, event.ID, []byte("jpeg"))
		require.NoError(t, err)
	}
	require.Len(t, event.ImageURLs, 3)

	// The fourth attempt is rejected before any upload call is made.
	_, err = svc.AttachImage(context.Background(), testOrganizer, event.ID, []byte("jpeg"))
	require.ErrorIs(t, err, model.ErrImageLimit)
	assert.Equal(t, 3, images.uploads)
}

func TestAttachImagePreservesUploadOrder(t *testing.T) {
	svc, _, _ := newEventFixture()

	event, err := svc.Create(context.Background(), testOrganizer, validEventParams())
	require.NoError(t, err)

	event, err = svc.AttachImage(context.Background(), testOrganizer, event.ID, []byte("a"))
	require.NoError(t, err)
	event, err = svc.AttachImage(context.Background(), testOrganizer, event.ID, []byte("b"))
	require.NoError(t, err)

	require.Len(t, event.ImageURLs, 2)
	assert.Equal(t, "file:///images/1.jpg", event.ImageURLs[0])
	assert.Equal(t, "file:///images/2.jpg", event.ImageURLs[1])
}

func TestAttachImageByNonOwnerForbidden(t *testing.T) {
	svc, _, images := newEventFixture()

	event, err := svc.Create(context.Background(), testOrganizer, validEventParams())
	require.NoError(t, err)

	_, err = svc.AttachImage(context.Background(), testStudent, event.ID, []byte("jpeg"))

	var permErr *model.PermissionError
	require.ErrorAs(t, err, &permErr)
	assert.Zero(t, images.uploads)
}

func TestListByOrganizerFiltersOwnership(t *testing.T) {
	svc, _, _ := newEventFixture()

	_, err := svc.Create(context.Background(), testOrganizer, validEventParams())
	require.NoError(t, err)

	other := &model.User{UID: "org-2", Role: model.RoleOrganizer}
	otherParams := validEventParams()
	otherParams.Name = "Robotics Demo"
	_, err = svc.Create(context.Background(), other, otherParams)
	require.NoError(t, err)

	mine, err := svc.ListByOrganizer(context.Background(), testOrganizer)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Tech Talk", mine[0].Name)
}
