package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/eventmap/internal/model"
)

// ReminderRepositoryImpl implements ReminderRepository using PostgreSQL.
type ReminderRepositoryImpl struct {
	pool *pgxpool.Pool
}

// NewReminderRepositoryImpl creates a new ReminderRepository implementation.
func NewReminderRepositoryImpl(pool *pgxpool.Pool) ReminderRepository {
	return &ReminderRepositoryImpl{pool: pool}
}

// Create persists a scheduled reminder.
func (r *ReminderRepositoryImpl) Create(
	ctx context.Context, params *model.CreateReminderParams,
) (*model.Reminder, error) {
	rem := &model.Reminder{
		ID:        uuid.NewString(),
		UserID:    params.UserID,
		EventID:   params.EventID,
		TriggerAt: params.TriggerAt,
		Title:     params.Title,
		Body:      params.Body,
		CreatedAt: time.Now().UTC(),
	}

	_, err := activeQuerier(ctx, r.pool).Exec(ctx,
		`INSERT INTO reminders (id, user_id, event_id, trigger_at, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rem.ID, rem.UserID, rem.EventID, rem.TriggerAt, rem.Title, rem.Body, rem.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return rem, nil
}

// GetDue returns undelivered reminders whose trigger time has passed, oldest first.
func (r *ReminderRepositoryImpl) GetDue(
	ctx context.Context, now time.Time, limit int,
) ([]*model.Reminder, error) {
	rows, err := activeQuerier(ctx, r.pool).Query(ctx,
		`SELECT id, user_id, event_id, trigger_at, title, body, created_at, delivered_at
		FROM reminders
		WHERE delivered_at IS NULL AND trigger_at <= $1
		ORDER BY trigger_at
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*model.Reminder
	for rows.Next() {
		var rem model.Reminder
		if err := rows.Scan(
			&rem.ID, &rem.UserID, &rem.EventID, &rem.TriggerAt,
			&rem.Title, &rem.Body, &rem.CreatedAt, &rem.DeliveredAt,
		); err != nil {
			return nil, err
		}
		reminders = append(reminders, &rem)
	}

	return reminders, rows.Err()
}

// MarkDelivered stamps a reminder as published.
func (r *ReminderRepositoryImpl) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	_, err := activeQuerier(ctx, r.pool).Exec(ctx,
		`UPDATE reminders SET delivered_at = $2 WHERE id = $1`, id, at)

	return err
}

// PurgeDelivered removes reminders delivered before the cutoff and returns
// how many were dropped.
func (r *ReminderRepositoryImpl) PurgeDelivered(ctx context.Context, before time.Time) (int64, error) {
	tag, err := activeQuerier(ctx, r.pool).Exec(ctx,
		`DELETE FROM reminders WHERE delivered_at IS NOT NULL AND delivered_at < $1`, before)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
