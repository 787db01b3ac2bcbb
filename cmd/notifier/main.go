// Package main provides the notifier: it consumes due reminders from the
// Redis Stream and delivers them as local notifications.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/rueidis"

	"github.com/campushub/eventmap/internal/config"
	"github.com/campushub/eventmap/internal/logger"
	"github.com/campushub/eventmap/internal/model"
	"github.com/campushub/eventmap/internal/service"
)

const (
	redisBlockTimeout = 1000 // milliseconds
	errorRetryDelay   = 1 * time.Second
	signalBufferSize  = 1
	exitCode          = 1

	groupName = "notification-service"
)

// ReminderHandler processes reminder messages from the stream.
type ReminderHandler struct {
	redisClient rueidis.Client
}

// NewReminderHandler creates a new reminder handler instance.
func NewReminderHandler(redisClient rueidis.Client) *ReminderHandler {
	return &ReminderHandler{redisClient: redisClient}
}

// HandleReminderDue delivers a due reminder. The notification collaborator is
// external; delivery here is the structured log at the boundary.
func (*ReminderHandler) HandleReminderDue(_ context.Context, due *model.ReminderDueEvent) error {
	slog.Info("delivering notification",
		slog.String("reminder_id", due.ReminderID),
		slog.String("user_id", due.UserID),
		slog.String("event_id", due.EventID),
		slog.String("title", due.Title),
		slog.String("body", due.Body),
	)

	return nil
}

func setupRedisClient(cfg *config.Config) (rueidis.Client, error) {
	return rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{cfg.RedisAddr},
	})
}

func setupSignalHandling() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, signalBufferSize)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("shutdown signal received, stopping notifier")
		cancel()
	}()

	return ctx, cancel
}

func createConsumerGroup(ctx context.Context, redisClient rueidis.Client, streamKey string) {
	createGroupCmd := redisClient.B().XgroupCreate().Key(streamKey).Group(groupName).Id("0").Mkstream().Build()
	if err := redisClient.Do(ctx, createGroupCmd).Error(); err != nil {
		slog.Info("consumer group creation result (may already exist)", slog.String("error", err.Error()))
	}
}

func runConsumerLoop(ctx context.Context, handler *ReminderHandler, streamKey, consumerName string) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("notifier stopped")
			return
		default:
			if err := handler.consumeMessages(ctx, streamKey, consumerName); err != nil {
				slog.Error("error consuming messages", slog.String("error", err.Error()))
				time.Sleep(errorRetryDelay)
			}
		}
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}

	loggerInstance := logger.Setup(cfg.LogLevel, "notifier")
	slog.SetDefault(loggerInstance)

	redisClient, err := setupRedisClient(cfg)
	if err != nil {
		slog.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(exitCode)
	}
	defer redisClient.Close()

	handler := NewReminderHandler(redisClient)
	ctx, cancel := setupSignalHandling()
	defer cancel()

	createConsumerGroup(ctx, redisClient, service.ReminderStreamKey)

	slog.Info("starting notifier",
		slog.String("stream", service.ReminderStreamKey),
		slog.String("group", groupName),
		slog.String("consumer", cfg.NotifierName),
	)

	runConsumerLoop(ctx, handler, service.ReminderStreamKey, cfg.NotifierName)
}

func (h *ReminderHandler) readMessages(
	ctx context.Context, streamKey, consumerName string,
) (map[string][]rueidis.XRangeEntry, error) {
	readCmd := h.redisClient.B().Xreadgroup().Group(groupName, consumerName).
		Count(1).
		Block(redisBlockTimeout).
		Streams().
		Key(streamKey).
		Id(">").
		Build()

	result := h.redisClient.Do(ctx, readCmd)
	if err := result.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil // poll timeout, nothing pending
		}

		return nil, err
	}

	return result.AsXRead()
}

func (h *ReminderHandler) acknowledgeMessage(ctx context.Context, streamKey, messageID string) {
	ackCmd := h.redisClient.B().Xack().Key(streamKey).Group(groupName).Id(messageID).Build()
	if err := h.redisClient.Do(ctx, ackCmd).Error(); err != nil {
		slog.Error("failed to ACK message",
			slog.String("message_id", messageID),
			slog.String("error", err.Error()),
		)
	} else {
		slog.Debug("ACKed message", slog.String("message_id", messageID))
	}
}

func (h *ReminderHandler) consumeMessages(ctx context.Context, streamKey, consumerName string) error {
	streams, err := h.readMessages(ctx, streamKey, consumerName)
	if err != nil {
		return err
	}

	if streams == nil {
		return nil
	}

	for streamName, messages := range streams {
		slog.Debug("processing stream",
			slog.String("stream", streamName),
			slog.Int("message_count", len(messages)),
		)

		for _, message := range messages {
			if err := h.processMessage(ctx, message); err != nil {
				slog.Error("failed to process message",
					slog.String("message_id", message.ID),
					slog.String("error", err.Error()),
				)

				continue
			}

			h.acknowledgeMessage(ctx, streamKey, message.ID)
		}
	}

	return nil
}

func (h *ReminderHandler) processMessage(ctx context.Context, message rueidis.XRangeEntry) error {
	slog.Debug("received message",
		slog.String("message_id", message.ID),
		slog.Any("fields", message.FieldValues),
	)

	due, err := dueEventFromFields(message.FieldValues)
	if err != nil {
		return err
	}

	return h.HandleReminderDue(ctx, due)
}

func dueEventFromFields(fields map[string]string) (*model.ReminderDueEvent, error) {
	due := &model.ReminderDueEvent{
		ReminderID: fields["reminder_id"],
		UserID:     fields["user_id"],
		EventID:    fields["event_id"],
		Title:      fields["title"],
		Body:       fields["body"],
	}

	if due.ReminderID == "" {
		return nil, errors.New("missing reminder_id in message")
	}

	if raw, ok := fields["trigger_at"]; ok {
		epoch, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.New("malformed trigger_at in message")
		}
		due.TriggerAt = time.Unix(epoch, 0).UTC()
	}

	return due, nil
}
