package email

import (
	"context"

	"github.com/fixora/complaintdesk/application/port/outbound"
	"github.com/fixora/complaintdesk/infrastructure/service/logger"
)

type logSender struct {
	logger logger.Logger
}

// NewLogSender writes messages to the log instead of delivering them. Local development only.
func NewLogSender(log logger.Logger) outbound.EmailSender {
	return &logSender{logger: log}
}

func (s *logSender) Send(ctx context.Context, msg outbound.EmailMessage) error {
	s.logger.Info(ctx, "Email not delivered (log provider)", map[string]interface{}{
		"to":      msg.To,
		"subject": msg.Subject,
		"html":    msg.HTML,
	})
	return nil
}
