package service

import (
	"context"
	"fmt"
	"time"

	"github.com/campushub/eventmap/internal/model"
	"github.com/campushub/eventmap/internal/repository"
)

// ReminderServiceImpl implements ReminderService.
type ReminderServiceImpl struct {
	reminderRepo repository.ReminderRepository
}

// NewReminderServiceImpl creates a new ReminderService implementation.
func NewReminderServiceImpl(reminderRepo repository.ReminderRepository) ReminderService {
	return &ReminderServiceImpl{reminderRepo: reminderRepo}
}

// Schedule derives up to two reminders from the event's start time, one an
// hour before and one ten minutes before. A candidate trigger already at or
// past "now" is skipped silently; registering 35 minutes out yields only the
// ten-minute reminder, registering after the start yields none.
//
// Repeated registration schedules from scratch; nothing de-duplicates against
// reminders left over from an earlier register/cancel cycle.
func (s *ReminderServiceImpl) Schedule(
	ctx context.Context, userID string, event *model.Event, now time.Time,
) ([]*model.Reminder, error) {
	candidates := []struct {
		lead time.Duration
		text string
	}{
		{model.ReminderLeadLong, "in 1 hour"},
		{model.ReminderLeadShort, "in 10 minutes"},
	}

	var scheduled []*model.Reminder

	for _, c := range candidates {
		triggerAt := event.DateTime.Add(-c.lead)
		if !triggerAt.After(now) {
			continue
		}

		rem, err := s.reminderRepo.Create(ctx, &model.CreateReminderParams{
			UserID:    userID,
			EventID:   event.ID,
			TriggerAt: triggerAt,
			Title:     ReminderTitle(event),
			Body:      ReminderBody(event, c.text),
		})
		if err != nil {
			return scheduled, fmt.Errorf("persist %s reminder: %w", c.text, err)
		}

		scheduled = append(scheduled, rem)
	}

	return scheduled, nil
}

// ReminderTitle renders the notification title for an event.
func ReminderTitle(event *model.Event) string {
	return fmt.Sprintf("Upcoming Event: %s", event.Name)
}

// ReminderBody renders the notification body. relative is the lead-time text,
// e.g. "in 1 hour".
func ReminderBody(event *model.Event, relative string) string {
	return fmt.Sprintf("Starts %s at %s, floor %s, room %s. Organizer: %s, contact: %s.",
		relative,
		event.Venue.Building, event.Venue.Floor, event.Venue.Room,
		event.OrganizerInfo.Name, event.OrganizerInfo.PhoneNumber,
	)
}
