package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/eventmap/internal/model"
)

func seedReminder(t *testing.T, repo *fakeReminderRepo, eventID string) *model.Reminder {
	t.Helper()

	rem, err := repo.Create(context.Background(), &model.CreateReminderParams{
		UserID:    "stu-1",
		EventID:   eventID,
		TriggerAt: time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC),
		Title:     "Upcoming Event: Tech Talk",
		Body:      "Starts in 1 hour at CSE Block, floor 2, room 204. Organizer: Priya, contact: 9876543210.",
	})
	require.NoError(t, err)

	return rem
}

func TestPurgeDeliveredDropsOldReminders(t *testing.T) {
	reminderRepo := &fakeReminderRepo{}
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	seedDelivered := func(id string, deliveredAt time.Time) {
		rem := seedReminder(t, reminderRepo, id)
		require.NoError(t, reminderRepo.MarkDelivered(context.Background(), rem.ID, deliveredAt))
	}
	seedDelivered("evt-old", now.Add(-10*24*time.Hour))
	seedDelivered("evt-recent", now.Add(-time.Hour))
	pending := seedReminder(t, reminderRepo, "evt-pending")

	svc := NewReminderDispatchServiceImpl(reminderRepo, nil)
	svc.now = func() time.Time { return now }

	purged, err := svc.PurgeDelivered(context.Background(), 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// Undelivered reminders survive any purge.
	due, err := reminderRepo.GetDue(context.Background(), now.Add(365*24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, pending.ID, due[0].ID)
}
