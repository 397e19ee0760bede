package model

import (
	"time"

	"github.com/google/uuid"
)

type GiftStatus string

const (
	GiftReceived GiftStatus = "received"
	GiftPending  GiftStatus = "pending"
)

func (s GiftStatus) IsValid() bool {
	switch s {
	case GiftReceived, GiftPending:
		return true
	}
	return false
}

type Gift struct {
	ID        uuid.UUID  `json:"id"`
	EventID   uuid.UUID  `json:"event_id"`
	GuestName string     `json:"guest_name"`
	Amount    float64    `json:"amount"`
	Message   string     `json:"message,omitempty"`
	Date      time.Time  `json:"date"`
	Status    GiftStatus `json:"status"`
}
