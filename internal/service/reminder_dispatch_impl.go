package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/campushub/eventmap/internal/repository"
)

// ReminderStreamKey is the Redis Stream due reminders are published to.
const ReminderStreamKey = "reminder:due"

// ReminderDispatchServiceImpl implements ReminderDispatchService.
type ReminderDispatchServiceImpl struct {
	reminderRepo repository.ReminderRepository
	redisClient  rueidis.Client
	now          func() time.Time
}

// NewReminderDispatchServiceImpl creates a new ReminderDispatchService implementation.
func NewReminderDispatchServiceImpl(
	reminderRepo repository.ReminderRepository, redisClient rueidis.Client,
) *ReminderDispatchServiceImpl {
	return &ReminderDispatchServiceImpl{
		reminderRepo: reminderRepo,
		redisClient:  redisClient,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// DispatchDue publishes reminders whose trigger time has passed to the
// reminder stream and marks them delivered. A failed publish or mark is
// logged and skipped; the next poll retries it.
func (s *ReminderDispatchServiceImpl) DispatchDue(ctx context.Context, limit int) error {
	now := s.now()

	due, err := s.reminderRepo.GetDue(ctx, now, limit)
	if err != nil {
		return err
	}

	for _, rem := range due {
		cmd := s.redisClient.B().Xadd().Key(ReminderStreamKey).Id("*").
			FieldValue().
			FieldValue("reminder_id", rem.ID).
			FieldValue("user_id", rem.UserID).
			FieldValue("event_id", rem.EventID).
			FieldValue("trigger_at", strconv.FormatInt(rem.TriggerAt.Unix(), 10)).
			FieldValue("title", rem.Title).
			FieldValue("body", rem.Body).
			Build()

		if err := s.redisClient.Do(ctx, cmd).Error(); err != nil {
			slog.Error("failed to publish reminder",
				slog.String("reminder_id", rem.ID),
				slog.String("error", err.Error()),
			)

			continue
		}

		if err := s.reminderRepo.MarkDelivered(ctx, rem.ID, now); err != nil {
			slog.Error("failed to mark reminder delivered",
				slog.String("reminder_id", rem.ID),
				slog.String("error", err.Error()),
			)

			continue
		}

		slog.Info("published reminder",
			slog.String("reminder_id", rem.ID),
			slog.String("event_id", rem.EventID),
			slog.String("stream", ReminderStreamKey),
		)
	}

	return nil
}

// PurgeDelivered drops reminders delivered longer than olderThan ago.
func (s *ReminderDispatchServiceImpl) PurgeDelivered(
	ctx context.Context, olderThan time.Duration,
) (int64, error) {
	return s.reminderRepo.PurgeDelivered(ctx, s.now().Add(-olderThan))
}

var _ ReminderDispatchService = (*ReminderDispatchServiceImpl)(nil)
