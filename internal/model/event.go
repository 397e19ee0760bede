package model

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OwnerID       uuid.UUID `json:"owner_id" db:"owner_id"`
	Title         string    `json:"title" db:"title"`
	Date          time.Time `json:"date" db:"date"`
	Location      string    `json:"location" db:"location"`
	City          string    `json:"city" db:"city"`
	Narrative     *string   `json:"narrative,omitempty" db:"narrative"`
	GuestEstimate int       `json:"guest_estimate" db:"guest_estimate"`
	Budget        float64   `json:"budget" db:"budget"`
	Tasks         []Task    `json:"tasks" db:"-"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	// OwnerName is denormalized from the owning user for list search.
	OwnerName *string `json:"owner_name,omitempty" db:"-"`
}

type UpdateEventParams struct {
	Title         *string
	Date          *time.Time
	Location      *string
	City          *string
	Narrative     *string
	GuestEstimate *int
	Budget        *float64
}

// Task is owned by exactly one event; its lifecycle is nested in the
// event's lifecycle.
type Task struct {
	ID      uuid.UUID  `json:"id"`
	Title   string     `json:"title"`
	Done    bool       `json:"done"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

type UpdateTaskParams struct {
	Title   *string
	Done    *bool
	DueDate *time.Time
}
