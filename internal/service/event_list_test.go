package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func makeEvent(title, city string, date time.Time) *model.Event {
	return &model.Event{
		ID:    uuid.New(),
		Title: title,
		City:  city,
		Date:  date,
	}
}

func staticLoader(events ...*model.Event) EventLoader {
	return func(ctx context.Context) ([]*model.Event, error) {
		return events, nil
	}
}

func newTestModel(loader EventLoader) *EventListModel {
	return NewEventListModel(loader, "Load failed", "Could not load events", zap.NewNop())
}

func TestEventListModel_Filtering(t *testing.T) {
	ctx := context.Background()

	aug10 := makeEvent("חתונה", "תל אביב", time.Date(2026, 8, 10, 19, 0, 0, 0, time.UTC))
	aug25 := makeEvent("בר מצווה", "חיפה", time.Date(2026, 8, 25, 18, 0, 0, 0, time.UTC))
	sep03 := makeEvent("ברית", "ירושלים", time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC))

	t.Run("month filter keeps only matching events in date order", func(t *testing.T) {
		m := newTestModel(staticLoader(sep03, aug25, aug10))
		m.Refresh(ctx)

		august := time.August
		m.SetFilterMonth(&august)

		got := m.Events()
		require.Len(t, got, 2)
		assert.Equal(t, aug10.ID, got[0].ID)
		assert.Equal(t, aug25.ID, got[1].ID)
	})

	t.Run("exact date wins over month filter", func(t *testing.T) {
		m := newTestModel(staticLoader(aug10, aug25, sep03))
		m.Refresh(ctx)

		september := time.September
		date := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
		m.SetCriteria(ListCriteria{FilterDate: &date, FilterMonth: &september})

		got := m.Events()
		require.Len(t, got, 1)
		assert.Equal(t, aug25.ID, got[0].ID)
	})

	t.Run("query matches city case-insensitively", func(t *testing.T) {
		m := newTestModel(staticLoader(aug10, aug25, sep03))
		m.Refresh(ctx)

		m.SetQuery("תל אביב")
		got := m.Events()
		require.Len(t, got, 1)
		assert.Equal(t, aug10.ID, got[0].ID)
	})

	t.Run("query matches owner name", func(t *testing.T) {
		owner := "Itay Ben"
		withOwner := makeEvent("אירוע", "אילת", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
		withOwner.OwnerName = &owner

		m := newTestModel(staticLoader(withOwner, aug10))
		m.Refresh(ctx)

		m.SetQuery("itay")
		got := m.Events()
		require.Len(t, got, 1)
		assert.Equal(t, withOwner.ID, got[0].ID)
	})

	t.Run("descending sort reverses the order", func(t *testing.T) {
		m := newTestModel(staticLoader(aug10, sep03, aug25))
		m.Refresh(ctx)

		m.SetSortDescending(true)
		got := m.Events()
		require.Len(t, got, 3)
		assert.Equal(t, sep03.ID, got[0].ID)
		assert.Equal(t, aug25.ID, got[1].ID)
		assert.Equal(t, aug10.ID, got[2].ID)
	})

	t.Run("criteria changes do not require a reload", func(t *testing.T) {
		m := newTestModel(staticLoader(aug10, aug25, sep03))
		m.Refresh(ctx)

		m.SetQuery("ברית")
		require.Len(t, m.Events(), 1)
		m.SetQuery("")
		require.Len(t, m.Events(), 3)
	})
}

func TestEventListModel_RefreshFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("database on fire")

	calls := 0
	loader := func(ctx context.Context) ([]*model.Event, error) {
		calls++
		if calls == 1 {
			return []*model.Event{makeEvent("חתונה", "תל אביב", time.Now())}, nil
		}
		return nil, boom
	}

	m := newTestModel(loader)
	m.Refresh(ctx)
	require.Len(t, m.Events(), 1)
	assert.Nil(t, m.LastAlert())

	m.Refresh(ctx)
	assert.Empty(t, m.Events())
	alert := m.LastAlert()
	require.NotNil(t, alert)
	assert.Equal(t, "Load failed", alert.Title)
	assert.False(t, m.Loading())

	// A successful refresh clears the alert.
	calls = 0
	m.Refresh(ctx)
	assert.Nil(t, m.LastAlert())
}

func TestEventListModel_SupersededRefreshIsDiscarded(t *testing.T) {
	ctx := context.Background()

	slowRelease := make(chan struct{})
	slowStarted := make(chan struct{})
	slow := makeEvent("slow", "", time.Now())
	fast := makeEvent("fast", "", time.Now())

	first := true
	loader := func(ctx context.Context) ([]*model.Event, error) {
		if first {
			first = false
			close(slowStarted)
			<-slowRelease
			return []*model.Event{slow}, nil
		}
		return []*model.Event{fast}, nil
	}

	m := newTestModel(loader)

	done := make(chan struct{})
	go func() {
		m.Refresh(ctx)
		close(done)
	}()
	<-slowStarted

	// Second refresh starts after the first and finishes first.
	m.Refresh(ctx)

	close(slowRelease)
	<-done

	got := m.Events()
	require.Len(t, got, 1)
	assert.Equal(t, fast.ID, got[0].ID)
}
