package store

import (
	"context"
	"errors"
	"sync"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// eventState is the persisted shape of an EventStore. Guest.TableID is the
// only record of seating; tables never store their occupant list.
type eventState struct {
	CurrentEvent *model.Event    `json:"current_event"`
	Guests       []model.Guest   `json:"guests"`
	Tables       []model.Table   `json:"tables"`
	Messages     []model.Message `json:"messages"`
	Gifts        []model.Gift    `json:"gifts"`
}

// EventStore holds the planning state of one active event: its guests,
// tables, tasks, messages and gifts. Every mutation writes through to a
// snapshot slot so the state survives restarts. Mutating an unknown id is
// a silent no-op, not an error; errors are reserved for persistence
// failures and seating-capacity refusal.
type EventStore struct {
	mu        sync.Mutex
	snapshots SnapshotStore
	slot      string
	log       *zap.Logger
	state     eventState
}

func NewEventStore(snapshots SnapshotStore, slot string, log *zap.Logger) *EventStore {
	return &EventStore{
		snapshots: snapshots,
		slot:      slot,
		log:       log,
		state: eventState{
			Guests:   make([]model.Guest, 0),
			Tables:   make([]model.Table, 0),
			Messages: make([]model.Message, 0),
			Gifts:    make([]model.Gift, 0),
		},
	}
}

// Hydrate restores the persisted snapshot. A missing or version-mismatched
// snapshot leaves the store empty and is not an error.
func (s *EventStore) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var loaded eventState
	err := s.snapshots.Load(ctx, s.slot, &loaded)
	if err != nil {
		if errors.Is(err, apperrors.ErrSnapshotNotFound) {
			return nil
		}
		if errors.Is(err, apperrors.ErrSnapshotVersion) {
			s.log.Warn("discarding snapshot from another schema version", zap.String("slot", s.slot))
			return nil
		}
		return err
	}

	if loaded.Guests == nil {
		loaded.Guests = make([]model.Guest, 0)
	}
	if loaded.Tables == nil {
		loaded.Tables = make([]model.Table, 0)
	}
	if loaded.Messages == nil {
		loaded.Messages = make([]model.Message, 0)
	}
	if loaded.Gifts == nil {
		loaded.Gifts = make([]model.Gift, 0)
	}
	s.state = loaded
	return nil
}

// persist must be called with the mutex held.
func (s *EventStore) persist(ctx context.Context) error {
	if err := s.snapshots.Save(ctx, s.slot, &s.state); err != nil {
		s.log.Error("snapshot save failed", zap.String("slot", s.slot), zap.Error(err))
		return err
	}
	return nil
}

// SetCurrentEvent replaces the active event wholesale.
func (s *EventStore) SetCurrentEvent(ctx context.Context, event model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Tasks == nil {
		event.Tasks = make([]model.Task, 0)
	}
	s.state.CurrentEvent = &event
	return s.persist(ctx)
}

// ResetFrom overwrites the event and guest collections with freshly
// fetched rows. Tables, messages and gifts are local planning state and
// are kept.
func (s *EventStore) ResetFrom(ctx context.Context, event model.Event, guests []model.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.Tasks == nil {
		event.Tasks = make([]model.Task, 0)
	}
	s.state.CurrentEvent = &event
	s.state.Guests = make([]model.Guest, len(guests))
	copy(s.state.Guests, guests)
	return s.persist(ctx)
}

// UpdateEvent merges partial fields into the active event. A store with no
// active event is left unchanged.
func (s *EventStore) UpdateEvent(ctx context.Context, params model.UpdateEventParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := s.state.CurrentEvent
	if event == nil {
		return nil
	}
	if params.Title != nil {
		event.Title = *params.Title
	}
	if params.Date != nil {
		event.Date = *params.Date
	}
	if params.Location != nil {
		event.Location = *params.Location
	}
	if params.City != nil {
		event.City = *params.City
	}
	if params.Narrative != nil {
		event.Narrative = params.Narrative
	}
	if params.GuestEstimate != nil {
		event.GuestEstimate = *params.GuestEstimate
	}
	if params.Budget != nil {
		event.Budget = *params.Budget
	}
	return s.persist(ctx)
}

func (s *EventStore) AddTask(ctx context.Context, task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentEvent == nil {
		return nil
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	s.state.CurrentEvent.Tasks = append(s.state.CurrentEvent.Tasks, task)
	return s.persist(ctx)
}

func (s *EventStore) UpdateTask(ctx context.Context, id uuid.UUID, params model.UpdateTaskParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentEvent == nil {
		return nil
	}
	for i := range s.state.CurrentEvent.Tasks {
		task := &s.state.CurrentEvent.Tasks[i]
		if task.ID != id {
			continue
		}
		if params.Title != nil {
			task.Title = *params.Title
		}
		if params.Done != nil {
			task.Done = *params.Done
		}
		if params.DueDate != nil {
			task.DueDate = params.DueDate
		}
		return s.persist(ctx)
	}
	return nil
}

func (s *EventStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentEvent == nil {
		return nil
	}
	tasks := s.state.CurrentEvent.Tasks
	for i := range tasks {
		if tasks[i].ID == id {
			s.state.CurrentEvent.Tasks = append(tasks[:i], tasks[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

// AddGuest appends to the guest collection. Duplicate ids are the caller's
// responsibility, matching the remote rows being the source of truth.
func (s *EventStore) AddGuest(ctx context.Context, guest model.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	if guest.Status == "" {
		guest.Status = model.RSVPPending
	}
	if guest.NumberOfPeople < 1 {
		guest.NumberOfPeople = 1
	}
	s.state.Guests = append(s.state.Guests, guest)
	return s.persist(ctx)
}

func (s *EventStore) UpdateGuest(ctx context.Context, id uuid.UUID, params model.UpdateGuestParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Guests {
		guest := &s.state.Guests[i]
		if guest.ID != id {
			continue
		}
		if params.Name != nil {
			guest.Name = *params.Name
		}
		if params.Phone != nil {
			guest.Phone = *params.Phone
		}
		if params.Status != nil {
			guest.Status = *params.Status
		}
		if params.GiftAmount != nil {
			guest.GiftAmount = params.GiftAmount
		}
		if params.Message != nil {
			guest.Message = params.Message
		}
		if params.Category != nil {
			guest.Category = *params.Category
		}
		if params.NumberOfPeople != nil {
			guest.NumberOfPeople = *params.NumberOfPeople
		}
		return s.persist(ctx)
	}
	return nil
}

func (s *EventStore) UpdateGuestStatus(ctx context.Context, id uuid.UUID, status model.RSVPStatus) error {
	return s.UpdateGuest(ctx, id, model.UpdateGuestParams{Status: &status})
}

// DeleteGuest removes a guest. Seating needs no cleanup: the guest row was
// the only record of its table assignment.
func (s *EventStore) DeleteGuest(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Guests {
		if s.state.Guests[i].ID == id {
			s.state.Guests = append(s.state.Guests[:i], s.state.Guests[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}

func (s *EventStore) AddTable(ctx context.Context, table model.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if table.ID == uuid.Nil {
		table.ID = uuid.New()
	}
	table.GuestIDs = nil
	s.state.Tables = append(s.state.Tables, table)
	return s.persist(ctx)
}

func (s *EventStore) UpdateTable(ctx context.Context, id uuid.UUID, params model.UpdateTableParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Tables {
		table := &s.state.Tables[i]
		if table.ID != id {
			continue
		}
		if params.Name != nil {
			table.Name = *params.Name
		}
		if params.Capacity != nil {
			table.Capacity = *params.Capacity
		}
		if params.Area != nil {
			table.Area = *params.Area
		}
		if params.Shape != nil {
			table.Shape = *params.Shape
		}
		return s.persist(ctx)
	}
	return nil
}

// DeleteTable removes a table and unseats its former occupants, so no
// guest is left pointing at a table that no longer exists.
func (s *EventStore) DeleteTable(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Tables {
		if s.state.Tables[i].ID != id {
			continue
		}
		s.state.Tables = append(s.state.Tables[:i], s.state.Tables[i+1:]...)
		for j := range s.state.Guests {
			guest := &s.state.Guests[j]
			if guest.TableID != nil && *guest.TableID == id {
				guest.TableID = nil
			}
		}
		return s.persist(ctx)
	}
	return nil
}

// AssignGuestToTable seats a guest, moving them off any previous table.
// An unknown guest or table leaves the state unchanged. Seating a party
// that would exceed the table's capacity returns ErrTableFull.
func (s *EventStore) AssignGuestToTable(ctx context.Context, guestID, tableID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guest := s.findGuest(guestID)
	if guest == nil {
		return nil
	}
	table := s.findTable(tableID)
	if table == nil {
		return nil
	}

	if table.Capacity > 0 {
		seated := 0
		for i := range s.state.Guests {
			g := &s.state.Guests[i]
			if g.ID != guestID && g.TableID != nil && *g.TableID == tableID {
				seated += g.Seats()
			}
		}
		if seated+guest.Seats() > table.Capacity {
			return apperrors.ErrTableFull
		}
	}

	id := tableID
	guest.TableID = &id
	return s.persist(ctx)
}

// RemoveGuestFromTable clears a guest's seating.
func (s *EventStore) RemoveGuestFromTable(ctx context.Context, guestID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guest := s.findGuest(guestID)
	if guest == nil || guest.TableID == nil {
		return nil
	}
	guest.TableID = nil
	return s.persist(ctx)
}

func (s *EventStore) AddMessage(ctx context.Context, message model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.Status == "" {
		message.Status = model.DeliveryQueued
	}
	s.state.Messages = append(s.state.Messages, message)
	return s.persist(ctx)
}

func (s *EventStore) UpdateMessageStatus(ctx context.Context, id uuid.UUID, status model.DeliveryStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Messages {
		if s.state.Messages[i].ID == id {
			s.state.Messages[i].Status = status
			return s.persist(ctx)
		}
	}
	return nil
}

func (s *EventStore) AddGift(ctx context.Context, gift model.Gift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gift.ID == uuid.Nil {
		gift.ID = uuid.New()
	}
	if gift.Status == "" {
		gift.Status = model.GiftPending
	}
	if !gift.Status.IsValid() {
		return apperrors.ErrInvalidInput
	}
	s.state.Gifts = append(s.state.Gifts, gift)
	return s.persist(ctx)
}

func (s *EventStore) UpdateGiftStatus(ctx context.Context, id uuid.UUID, status model.GiftStatus) error {
	if !status.IsValid() {
		return apperrors.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Gifts {
		if s.state.Gifts[i].ID == id {
			s.state.Gifts[i].Status = status
			return s.persist(ctx)
		}
	}
	return nil
}

// findGuest and findTable must be called with the mutex held; the
// returned pointers alias store state.
func (s *EventStore) findGuest(id uuid.UUID) *model.Guest {
	for i := range s.state.Guests {
		if s.state.Guests[i].ID == id {
			return &s.state.Guests[i]
		}
	}
	return nil
}

func (s *EventStore) findTable(id uuid.UUID) *model.Table {
	for i := range s.state.Tables {
		if s.state.Tables[i].ID == id {
			return &s.state.Tables[i]
		}
	}
	return nil
}

// Event returns a copy of the active event, or nil if none is set.
func (s *EventStore) Event() *model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.CurrentEvent == nil {
		return nil
	}
	event := *s.state.CurrentEvent
	event.Tasks = make([]model.Task, len(s.state.CurrentEvent.Tasks))
	copy(event.Tasks, s.state.CurrentEvent.Tasks)
	return &event
}

func (s *EventStore) Guests() []model.Guest {
	s.mu.Lock()
	defer s.mu.Unlock()

	guests := make([]model.Guest, len(s.state.Guests))
	copy(guests, s.state.Guests)
	return guests
}

func (s *EventStore) FindGuest(id uuid.UUID) (model.Guest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if guest := s.findGuest(id); guest != nil {
		return *guest, true
	}
	return model.Guest{}, false
}

// Tables returns the tables with their occupant lists derived from the
// guest collection, in guest insertion order.
func (s *EventStore) Tables() []model.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := make([]model.Table, len(s.state.Tables))
	copy(tables, s.state.Tables)
	for i := range tables {
		tables[i].GuestIDs = s.guestIDsAt(tables[i].ID)
	}
	return tables
}

// GuestsAtTable returns the guests seated at a table.
func (s *EventStore) GuestsAtTable(tableID uuid.UUID) []model.Guest {
	s.mu.Lock()
	defer s.mu.Unlock()

	guests := make([]model.Guest, 0)
	for i := range s.state.Guests {
		guest := s.state.Guests[i]
		if guest.TableID != nil && *guest.TableID == tableID {
			guests = append(guests, guest)
		}
	}
	return guests
}

// guestIDsAt must be called with the mutex held.
func (s *EventStore) guestIDsAt(tableID uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, 0)
	for i := range s.state.Guests {
		guest := &s.state.Guests[i]
		if guest.TableID != nil && *guest.TableID == tableID {
			ids = append(ids, guest.ID)
		}
	}
	return ids
}

func (s *EventStore) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]model.Message, len(s.state.Messages))
	copy(messages, s.state.Messages)
	return messages
}

func (s *EventStore) Gifts() []model.Gift {
	s.mu.Lock()
	defer s.mu.Unlock()

	gifts := make([]model.Gift, len(s.state.Gifts))
	copy(gifts, s.state.Gifts)
	return gifts
}
