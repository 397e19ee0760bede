package store

import (
	"context"
	"testing"
	"time"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *EventStore {
	t.Helper()
	return NewEventStore(NewFileSnapshotStore(t.TempDir()), "planner-test", zap.NewNop())
}

func seedEvent(t *testing.T, s *EventStore) model.Event {
	t.Helper()
	event := model.Event{
		ID:    uuid.New(),
		Title: "חתונה של דנה ויוסי",
		Date:  time.Date(2026, 6, 18, 19, 30, 0, 0, time.UTC),
		City:  "תל אביב",
	}
	require.NoError(t, s.SetCurrentEvent(context.Background(), event))
	return event
}

func addGuest(t *testing.T, s *EventStore, name string, people int) model.Guest {
	t.Helper()
	guest := model.Guest{ID: uuid.New(), Name: name, NumberOfPeople: people}
	require.NoError(t, s.AddGuest(context.Background(), guest))
	return guest
}

func addTable(t *testing.T, s *EventStore, name string, capacity int) model.Table {
	t.Helper()
	table := model.Table{ID: uuid.New(), Name: name, Capacity: capacity, Shape: model.TableShapeSquare}
	require.NoError(t, s.AddTable(context.Background(), table))
	return table
}

// tablesContaining returns the ids of tables whose derived occupant list
// contains the guest.
func tablesContaining(s *EventStore, guestID uuid.UUID) []uuid.UUID {
	out := []uuid.UUID{}
	for _, table := range s.Tables() {
		for _, id := range table.GuestIDs {
			if id == guestID {
				out = append(out, table.ID)
			}
		}
	}
	return out
}

func TestEventStore_AssignGuestToTable(t *testing.T) {
	ctx := context.Background()

	t.Run("guest appears at exactly one table matching their TableID", func(t *testing.T) {
		s := newTestStore(t)
		seedEvent(t, s)
		guest := addGuest(t, s, "רון לוי", 2)
		table := addTable(t, s, "Table 1", 8)

		require.NoError(t, s.AssignGuestToTable(ctx, guest.ID, table.ID))

		holders := tablesContaining(s, guest.ID)
		require.Len(t, holders, 1)
		assert.Equal(t, table.ID, holders[0])

		stored, found := s.FindGuest(guest.ID)
		require.True(t, found)
		require.NotNil(t, stored.TableID)
		assert.Equal(t, table.ID, *stored.TableID)
	})

	t.Run("reassignment leaves the guest only at the new table", func(t *testing.T) {
		s := newTestStore(t)
		seedEvent(t, s)
		guest := addGuest(t, s, "רון לוי", 1)
		t1 := addTable(t, s, "Table 1", 8)
		t2 := addTable(t, s, "Table 2", 8)

		require.NoError(t, s.AssignGuestToTable(ctx, guest.ID, t1.ID))
		require.NoError(t, s.AssignGuestToTable(ctx, guest.ID, t2.ID))

		holders := tablesContaining(s, guest.ID)
		require.Len(t, holders, 1)
		assert.Equal(t, t2.ID, holders[0])
	})

	t.Run("unknown guest or table is a no-op", func(t *testing.T) {
		s := newTestStore(t)
		seedEvent(t, s)
		guest := addGuest(t, s, "רון לוי", 1)
		table := addTable(t, s, "Table 1", 8)

		require.NoError(t, s.AssignGuestToTable(ctx, uuid.New(), table.ID))
		require.NoError(t, s.AssignGuestToTable(ctx, guest.ID, uuid.New()))

		stored, _ := s.FindGuest(guest.ID)
		assert.Nil(t, stored.TableID)
		assert.Empty(t, tablesContaining(s, guest.ID))
	})

	t.Run("seating beyond capacity is refused", func(t *testing.T) {
		s := newTestStore(t)
		seedEvent(t, s)
		table := addTable(t, s, "Small", 3)
		g1 := addGuest(t, s, "א", 2)
		g2 := addGuest(t, s, "ב", 2)

		require.NoError(t, s.AssignGuestToTable(ctx, g1.ID, table.ID))
		err := s.AssignGuestToTable(ctx, g2.ID, table.ID)
		require.ErrorIs(t, err, apperrors.ErrTableFull)

		stored, _ := s.FindGuest(g2.ID)
		assert.Nil(t, stored.TableID)
	})

	t.Run("reassigning within the same table does not double-count the party", func(t *testing.T) {
		s := newTestStore(t)
		seedEvent(t, s)
		table := addTable(t, s, "Exact", 4)
		guest := addGuest(t, s, "משפחה", 4)

		require.NoError(t, s.AssignGuestToTable(ctx, guest.ID, table.ID))
		require.NoError(t, s.AssignGuestToTable(ctx, guest.ID, table.ID))
	})
}

func TestEventStore_RemoveGuestFromTable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEvent(t, s)
	guest := addGuest(t, s, "רון לוי", 1)
	table := addTable(t, s, "Table 1", 8)

	require.NoError(t, s.AssignGuestToTable(ctx, guest.ID, table.ID))
	require.NoError(t, s.RemoveGuestFromTable(ctx, guest.ID))

	stored, _ := s.FindGuest(guest.ID)
	assert.Nil(t, stored.TableID)
	assert.Empty(t, tablesContaining(s, guest.ID))

	// Unknown guest is a no-op.
	require.NoError(t, s.RemoveGuestFromTable(ctx, uuid.New()))
}

func TestEventStore_DeleteTable_UnseatsOccupants(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEvent(t, s)
	guest := addGuest(t, s, "רון לוי", 1)
	table := addTable(t, s, "Table 1", 8)
	require.NoError(t, s.AssignGuestToTable(ctx, guest.ID, table.ID))

	require.NoError(t, s.DeleteTable(ctx, table.ID))

	assert.Empty(t, s.Tables())
	stored, found := s.FindGuest(guest.ID)
	require.True(t, found)
	assert.Nil(t, stored.TableID)
}

func TestEventStore_UnknownIDMutationsAreNoOps(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEvent(t, s)
	addGuest(t, s, "א", 1)
	addGuest(t, s, "ב", 1)
	before := s.Guests()

	name := "whatever"
	require.NoError(t, s.UpdateGuest(ctx, uuid.New(), model.UpdateGuestParams{Name: &name}))
	require.NoError(t, s.DeleteGuest(ctx, uuid.New()))
	require.NoError(t, s.UpdateGuestStatus(ctx, uuid.New(), model.RSVPConfirmed))
	require.NoError(t, s.UpdateTable(ctx, uuid.New(), model.UpdateTableParams{Name: &name}))
	require.NoError(t, s.DeleteTable(ctx, uuid.New()))
	require.NoError(t, s.UpdateGiftStatus(ctx, uuid.New(), model.GiftReceived))
	require.NoError(t, s.UpdateMessageStatus(ctx, uuid.New(), model.DeliverySent))

	assert.Equal(t, before, s.Guests())
}

func TestEventStore_UpdateEventWithoutCurrentEventIsNoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	title := "new title"
	require.NoError(t, s.UpdateEvent(ctx, model.UpdateEventParams{Title: &title}))
	assert.Nil(t, s.Event())
}

func TestEventStore_Tasks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEvent(t, s)

	task := model.Task{ID: uuid.New(), Title: "להזמין צלם"}
	require.NoError(t, s.AddTask(ctx, task))

	done := true
	require.NoError(t, s.UpdateTask(ctx, task.ID, model.UpdateTaskParams{Done: &done}))

	event := s.Event()
	require.Len(t, event.Tasks, 1)
	assert.True(t, event.Tasks[0].Done)

	// Unknown task id changes nothing.
	require.NoError(t, s.UpdateTask(ctx, uuid.New(), model.UpdateTaskParams{Done: &done}))
	require.NoError(t, s.DeleteTask(ctx, uuid.New()))
	require.Len(t, s.Event().Tasks, 1)

	require.NoError(t, s.DeleteTask(ctx, task.ID))
	assert.Empty(t, s.Event().Tasks)
}

func TestEventStore_GuestDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEvent(t, s)

	require.NoError(t, s.AddGuest(ctx, model.Guest{ID: uuid.New(), Name: "בלי כלום"}))
	guests := s.Guests()
	require.Len(t, guests, 1)
	assert.Equal(t, model.RSVPPending, guests[0].Status)
	assert.Equal(t, 1, guests[0].NumberOfPeople)
}

func TestEventStore_GiftsAndMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEvent(t, s)

	gift := model.Gift{ID: uuid.New(), GuestName: "סבתא", Amount: 500, Date: time.Now()}
	require.NoError(t, s.AddGift(ctx, gift))
	require.NoError(t, s.UpdateGiftStatus(ctx, gift.ID, model.GiftReceived))
	gifts := s.Gifts()
	require.Len(t, gifts, 1)
	assert.Equal(t, model.GiftReceived, gifts[0].Status)

	msg := model.Message{ID: uuid.New(), Channel: model.ChannelWhatsApp, RecipientPhone: "0521234567"}
	require.NoError(t, s.AddMessage(ctx, msg))
	messages := s.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, model.DeliveryQueued, messages[0].Status)

	require.NoError(t, s.UpdateMessageStatus(ctx, msg.ID, model.DeliverySent))
	assert.Equal(t, model.DeliverySent, s.Messages()[0].Status)
}

func TestEventStore_GiftStatusValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedEvent(t, s)

	gift := model.Gift{ID: uuid.New(), GuestName: "סבתא", Amount: 200, Date: time.Now()}
	require.NoError(t, s.AddGift(ctx, gift))

	err := s.UpdateGiftStatus(ctx, gift.ID, model.GiftStatus("banana"))
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, model.GiftPending, s.Gifts()[0].Status)

	err = s.AddGift(ctx, model.Gift{ID: uuid.New(), GuestName: "דוד", Amount: 100, Status: "banana"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
	require.Len(t, s.Gifts(), 1)
}

func TestEventStore_HydrateRestoresState(t *testing.T) {
	ctx := context.Background()
	snapshots := NewFileSnapshotStore(t.TempDir())

	s := NewEventStore(snapshots, "planner-hydrate", zap.NewNop())
	event := model.Event{ID: uuid.New(), Title: "בר מצווה"}
	require.NoError(t, s.SetCurrentEvent(ctx, event))
	guest := addGuest(t, s, "אורח", 3)
	table := addTable(t, s, "Table 1", 10)
	require.NoError(t, s.AssignGuestToTable(ctx, guest.ID, table.ID))

	restored := NewEventStore(snapshots, "planner-hydrate", zap.NewNop())
	require.NoError(t, restored.Hydrate(ctx))

	require.NotNil(t, restored.Event())
	assert.Equal(t, event.ID, restored.Event().ID)
	stored, found := restored.FindGuest(guest.ID)
	require.True(t, found)
	require.NotNil(t, stored.TableID)
	assert.Equal(t, table.ID, *stored.TableID)
	assert.Equal(t, []uuid.UUID{guest.ID}, restored.Tables()[0].GuestIDs)
}

func TestEventStore_HydrateIgnoresMissingSnapshot(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Hydrate(context.Background()))
	assert.Nil(t, s.Event())
	assert.Empty(t, s.Guests())
}
