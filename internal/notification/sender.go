package notification

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Sender delivers a message to a patient. Delivery is best-effort:
// callers fire and forget, failures are logged by the caller and never
// propagated into a lifecycle transition.
type Sender interface {
	Send(ctx context.Context, recipientPhone, message string) error
}

// LogSender is the fallback used when no SMS gateway is configured.
type LogSender struct {
	Logger *logrus.Logger
}

func (s *LogSender) Send(_ context.Context, recipientPhone, message string) error {
	s.Logger.WithFields(logrus.Fields{
		"recipient": recipientPhone,
	}).Info("Notification (no gateway configured): " + message)
	return nil
}
