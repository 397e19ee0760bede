package model

import "github.com/google/uuid"

type TableShape string

const (
	TableShapeSquare    TableShape = "square"
	TableShapeRectangle TableShape = "rectangle"
)

func (s TableShape) IsValid() bool {
	switch s {
	case TableShapeSquare, TableShapeRectangle:
		return true
	}
	return false
}

type Table struct {
	ID       uuid.UUID  `json:"id"`
	EventID  uuid.UUID  `json:"event_id"`
	Name     string     `json:"name"`
	Capacity int        `json:"capacity"`
	Area     string     `json:"area"`
	Shape    TableShape `json:"shape"`

	// GuestIDs is derived from the guest collection when the table is
	// read out of the store; it is never persisted.
	GuestIDs []uuid.UUID `json:"guests,omitempty"`
}

type UpdateTableParams struct {
	Name     *string
	Capacity *int
	Area     *string
	Shape    *TableShape
}
