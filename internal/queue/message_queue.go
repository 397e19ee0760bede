package queue

import (
	"context"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"

	"github.com/google/uuid"
)

// OutboundMessage is a queued invitation or notice, tagged with the event
// whose planner state tracks its delivery status.
type OutboundMessage struct {
	EventID uuid.UUID     `json:"event_id"`
	Message model.Message `json:"message"`
}

type Delivery struct {
	Data *OutboundMessage
	Ack  func()
	Nack func(requeue bool)
}

type MessageQueue interface {
	Publish(ctx context.Context, msg *OutboundMessage) error
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

// MemoryMessageQueue backs the queue with a Go channel; used in tests and
// single-process deployments without redis.
type MemoryMessageQueue struct {
	ch chan *OutboundMessage
}

func NewMemoryMessageQueue(bufferSize int) *MemoryMessageQueue {
	return &MemoryMessageQueue{
		ch: make(chan *OutboundMessage, bufferSize),
	}
}

func (q *MemoryMessageQueue) Publish(ctx context.Context, msg *OutboundMessage) error {
	select {
	case q.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryMessageQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-q.ch:
				if !ok {
					return
				}
				d := Delivery{
					Data: msg,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if !requeue {
							return
						}
						// Never block forever on a full buffer.
						select {
						case q.ch <- msg:
						case <-ctx.Done():
						}
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
