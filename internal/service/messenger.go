package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go_phrase_texter/internal/config"
	"go_phrase_texter/internal/metrics"
	"go_phrase_texter/internal/middleware"
	"go_phrase_texter/internal/model"
)

// Messenger delivers a text message to a phone number.
type Messenger interface {
	Text(ctx context.Context, phoneNumber, body string) error
}

// Notification is a text prepared inside a transaction and sent after it
// commits.
type Notification struct {
	PhoneNumber string
	Body        string
}

// deliverAll sends every note and joins the failures. Each failure wraps
// model.ErrDeliveryFailed and leaves out the recipient's number.
func deliverAll(ctx context.Context, messenger Messenger, notes []Notification) error {
	logger := middleware.GetLogger(ctx)
	var errs []error
	for i, n := range notes {
		if err := messenger.Text(ctx, n.PhoneNumber, n.Body); err != nil {
			metrics.MessagesFailed.Inc()
			logger.Error("Text delivery failed", "to", n.PhoneNumber, "error", err)
			// The recipient stays in the log; callers may show this error to another user.
			errs = append(errs, fmt.Errorf("%w: text %d of %d: %w", model.ErrDeliveryFailed, i+1, len(notes), err))
		}
	}
	return errors.Join(errs...)
}

// --- LogMessenger ---
type LogMessenger struct{}

func (m *LogMessenger) Text(ctx context.Context, phoneNumber, body string) error {
	logger := middleware.GetLogger(ctx)
	logger.Info("--- Sending Text (LogMessenger) ---", "to", phoneNumber, "body", body)
	return nil
}

// --- NewMessenger factory ---
func NewMessenger(cfg *config.Config) Messenger {
	logger := slog.Default()
	switch cfg.SMS.Type {
	case "sns":
		logger.Info("Initializing SNS messenger...")
		return NewSNSMessenger(cfg)
	case "log":
		logger.Info("Initializing Log messenger...")
		return &LogMessenger{}
	default:
		logger.Warn("Unknown sms type, defaulting to LogMessenger", "type", cfg.SMS.Type)
		return &LogMessenger{}
	}
}
