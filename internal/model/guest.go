package model

import "github.com/google/uuid"

// RSVPStatus is the attendance confirmation status of a guest.
type RSVPStatus string

const (
	RSVPConfirmed RSVPStatus = "confirmed"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPPending   RSVPStatus = "pending"
)

func (s RSVPStatus) IsValid() bool {
	switch s {
	case RSVPConfirmed, RSVPDeclined, RSVPPending:
		return true
	}
	return false
}

type Guest struct {
	ID      uuid.UUID  `json:"id" db:"id"`
	EventID uuid.UUID  `json:"event_id" db:"event_id"`
	Name    string     `json:"name" db:"name"`
	Phone   string     `json:"phone" db:"phone"`
	Status  RSVPStatus `json:"status" db:"status"`
	// TableID is the single source of truth for seating. A table's
	// occupant list is derived from it, never stored alongside it.
	TableID        *uuid.UUID `json:"table_id,omitempty" db:"table_id"`
	GiftAmount     *float64   `json:"gift_amount,omitempty" db:"gift_amount"`
	Message        *string    `json:"message,omitempty" db:"message"`
	Category       string     `json:"category" db:"category"`
	NumberOfPeople int        `json:"number_of_people" db:"number_of_people"`
}

// Seats returns the number of seats the guest's party occupies.
func (g *Guest) Seats() int {
	if g.NumberOfPeople < 1 {
		return 1
	}
	return g.NumberOfPeople
}

type UpdateGuestParams struct {
	Name           *string
	Phone          *string
	Status         *RSVPStatus
	GiftAmount     *float64
	Message        *string
	Category       *string
	NumberOfPeople *int
}
