package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageChannel string

const (
	ChannelSMS      MessageChannel = "sms"
	ChannelWhatsApp MessageChannel = "whatsapp"
)

func (c MessageChannel) IsValid() bool {
	switch c {
	case ChannelSMS, ChannelWhatsApp:
		return true
	}
	return false
}

type DeliveryStatus string

const (
	DeliveryQueued DeliveryStatus = "queued"
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

// Message is an outbound invitation or notice to a guest. Append-only
// apart from its delivery status, which the delivery worker advances.
type Message struct {
	ID             uuid.UUID      `json:"id"`
	EventID        uuid.UUID      `json:"event_id"`
	Channel        MessageChannel `json:"channel"`
	RecipientName  string         `json:"recipient_name"`
	RecipientPhone string         `json:"recipient_phone"`
	Body           string         `json:"body"`
	SentAt         time.Time      `json:"sent_at"`
	Status         DeliveryStatus `json:"status"`
}
