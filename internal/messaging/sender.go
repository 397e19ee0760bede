package messaging

import (
	"context"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"

	"go.uber.org/zap"
)

// Sender delivers one outbound message over a channel (WhatsApp, SMS).
type Sender interface {
	Send(ctx context.Context, msg *model.Message) error
}

// LogSender logs instead of sending; wired when no real channel is
// configured so the delivery pipeline still advances message status.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg *model.Message) error {
	s.log.Info("message send skipped, no channel configured",
		zap.String("channel", string(msg.Channel)),
		zap.String("recipient", msg.RecipientPhone),
	)
	return nil
}
