package worker

import (
	"context"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/messaging"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/queue"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusUpdater writes a message's delivery status back into the event's
// planning state. Implemented by store.Manager.
type StatusUpdater interface {
	UpdateMessageStatus(ctx context.Context, eventID, messageID uuid.UUID, status model.DeliveryStatus) error
}

type MessageWorker interface {
	Start(ctx context.Context) error
}

// MessageWorkerImpl drains the outbound queue, sends each message through
// the configured sender and records the outcome. Send failures are
// nacked for a delayed retry; the queue drops poison messages after its
// retry budget.
type MessageWorkerImpl struct {
	sender messaging.Sender
	queue  queue.MessageQueue
	status StatusUpdater
	log    *zap.Logger
}

func NewMessageWorker(sender messaging.Sender, q queue.MessageQueue, status StatusUpdater, log *zap.Logger) MessageWorker {
	return &MessageWorkerImpl{
		sender: sender,
		queue:  q,
		status: status,
		log:    log,
	}
}

func (w *MessageWorkerImpl) Start(ctx context.Context) error {
	deliveries, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for d := range deliveries {
			w.handle(ctx, d)
		}
	}()
	return nil
}

func (w *MessageWorkerImpl) handle(ctx context.Context, d queue.Delivery) {
	msg := d.Data.Message

	if err := w.sender.Send(ctx, &msg); err != nil {
		w.log.Warn("send failed, requeueing",
			zap.String("message_id", msg.ID.String()),
			zap.String("recipient", msg.RecipientPhone),
			zap.Error(err),
		)
		if statusErr := w.status.UpdateMessageStatus(ctx, d.Data.EventID, msg.ID, model.DeliveryFailed); statusErr != nil {
			w.log.Error("status update failed", zap.String("message_id", msg.ID.String()), zap.Error(statusErr))
		}
		d.Nack(true)
		return
	}

	if err := w.status.UpdateMessageStatus(ctx, d.Data.EventID, msg.ID, model.DeliverySent); err != nil {
		w.log.Error("status update failed", zap.String("message_id", msg.ID.String()), zap.Error(err))
	}
	d.Ack()
}
