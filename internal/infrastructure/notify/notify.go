package notify

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/agency-identity/internal/application"
	"github.com/oksasatya/agency-identity/pkg/mailer"
)

// JSONPublisher is satisfied by *helpers.RabbitPublisher.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier turns notifications into mailer.EmailJob messages consumed by
// cmd/email_worker.
type QueueNotifier struct {
	pub JSONPublisher
}

func NewQueueNotifier(pub JSONPublisher) *QueueNotifier {
	return &QueueNotifier{pub: pub}
}

func (n *QueueNotifier) Notify(ctx context.Context, msg application.Notification) error {
	if msg.To == "" {
		return errors.New("notification has no recipient")
	}
	return n.pub.PublishJSON(ctx, mailer.EmailJob{
		To:       msg.To,
		Subject:  msg.Subject,
		Text:     msg.Body,
		Template: msg.Template,
		Data:     msg.Data,
	})
}

// LogNotifier only logs. Used when MAIL_SEND_ENABLED=false or no broker is
// configured.
type LogNotifier struct {
	log *logrus.Logger
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg application.Notification) error {
	n.log.WithFields(logrus.Fields{
		"to":       msg.To,
		"template": msg.Template,
		"subject":  msg.Subject,
	}).Info("notification suppressed (mail sending disabled)")
	return nil
}

var (
	_ application.Notifier = (*QueueNotifier)(nil)
	_ application.Notifier = (*LogNotifier)(nil)
)
