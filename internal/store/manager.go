package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager hands out one EventStore per event, hydrating new stores from
// their snapshot slot and falling back to the remote rows when no usable
// snapshot exists.
type Manager struct {
	mu        sync.Mutex
	snapshots SnapshotStore
	events    repository.EventRepository
	guests    repository.GuestRepository
	log       *zap.Logger
	stores    map[uuid.UUID]*EventStore
}

func NewManager(snapshots SnapshotStore, events repository.EventRepository, guests repository.GuestRepository, log *zap.Logger) *Manager {
	return &Manager{
		snapshots: snapshots,
		events:    events,
		guests:    guests,
		log:       log,
		stores:    make(map[uuid.UUID]*EventStore),
	}
}

func plannerSlot(eventID uuid.UUID) string {
	return fmt.Sprintf("planner:%s", eventID)
}

// Open returns the store for an event, creating and hydrating it on first
// use.
func (m *Manager) Open(ctx context.Context, eventID uuid.UUID) (*EventStore, error) {
	m.mu.Lock()
	if s, ok := m.stores[eventID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s := NewEventStore(m.snapshots, plannerSlot(eventID), m.log)
	if err := s.Hydrate(ctx); err != nil {
		return nil, err
	}
	if s.Event() == nil {
		if err := m.reload(ctx, s, eventID); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have opened the same event meanwhile.
	if existing, ok := m.stores[eventID]; ok {
		return existing, nil
	}
	m.stores[eventID] = s
	return s, nil
}

// Refresh overwrites the store's event and guest collections with the
// current remote rows.
func (m *Manager) Refresh(ctx context.Context, eventID uuid.UUID) (*EventStore, error) {
	s, err := m.Open(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := m.reload(ctx, s, eventID); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) reload(ctx context.Context, s *EventStore, eventID uuid.UUID) error {
	event, err := m.events.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	rows, err := m.guests.ListByEvent(ctx, eventID)
	if err != nil {
		return err
	}
	guests := make([]model.Guest, 0, len(rows))
	for _, g := range rows {
		guests = append(guests, *g)
	}
	return s.ResetFrom(ctx, *event, guests)
}

// UpdateMessageStatus is the delivery worker's write-back path.
func (m *Manager) UpdateMessageStatus(ctx context.Context, eventID, messageID uuid.UUID, status model.DeliveryStatus) error {
	s, err := m.Open(ctx, eventID)
	if err != nil {
		return err
	}
	return s.UpdateMessageStatus(ctx, messageID, status)
}
