package model

import "time"

// Reminder offsets before an event's start time. A registration produces up to
// two reminders; candidates already in the past are skipped silently.
const (
	ReminderLeadLong  = 60 * time.Minute
	ReminderLeadShort = 10 * time.Minute
)

// Reminder is a scheduled point-in-time notification tied to an event's start.
// DeliveredAt is nil until the dispatcher has published it.
type Reminder struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	EventID     string     `json:"event_id"`
	TriggerAt   time.Time  `json:"trigger_at"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	CreatedAt   time.Time  `json:"created_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// CreateReminderParams represents parameters for persisting a new reminder.
type CreateReminderParams struct {
	UserID    string
	EventID   string
	TriggerAt time.Time
	Title     string
	Body      string
}

// ReminderDueEvent is the payload published to the reminder stream when a
// reminder's trigger time has passed.
type ReminderDueEvent struct {
	ReminderID string    `json:"reminder_id"`
	UserID     string    `json:"user_id"`
	EventID    string    `json:"event_id"`
	TriggerAt  time.Time `json:"trigger_at"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
}
