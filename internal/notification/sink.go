// Package notification provides the operator notification sink. Delivery is
// best effort: failures are logged and swallowed, never propagated.
package notification

import (
	"context"
	"fmt"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
	mail "github.com/wneessen/go-mail"
)

// Sink delivers operator notifications. Without SMTP configuration it logs
// only.
type Sink struct {
	cfg config.NotificationConfig
	log *logger.Logger
}

// NewSink creates a new notification sink.
func NewSink(cfg config.NotificationConfig, log *logger.Logger) *Sink {
	return &Sink{cfg: cfg, log: log}
}

// Notify delivers one message. Fire and forget.
func (s *Sink) Notify(ctx context.Context, tenantID uuid.UUID, level, message string) {
	s.log.Info("operator_notification",
		"tenant_id", tenantID.String(), "level", level, "message", message)

	if !s.cfg.IsNotifyEmailEnabled() {
		return
	}
	if err := s.sendMail(ctx, tenantID, level, message); err != nil {
		s.log.Error("notification email failed", "error", err, "tenant_id", tenantID.String())
	}
}

func (s *Sink) sendMail(ctx context.Context, tenantID uuid.UUID, level, message string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.GetNotifyFromAddress()); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(s.cfg.GetNotifyToAddress()); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}
	msg.Subject(fmt.Sprintf("[%s] tenant %s", level, tenantID))
	msg.SetBodyString(mail.TypeTextPlain, message)

	client, err := mail.NewClient(s.cfg.GetSMTPHost(),
		mail.WithPort(s.cfg.GetSMTPPort()),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.GetSMTPUsername()),
		mail.WithPassword(s.cfg.GetSMTPPassword()),
	)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
