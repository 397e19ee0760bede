package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"

	"go.uber.org/zap"
)

// EventLoader fetches the raw event list, typically from the rows
// repository or a per-role query.
type EventLoader func(ctx context.Context) ([]*model.Event, error)

// Alert is a user-facing load failure, surfaced instead of an inline
// error state.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// ListCriteria filters and orders an event list. An exact date wins over
// a month filter; the free-text query matches title, location, city and
// owner name case-insensitively.
type ListCriteria struct {
	FilterDate     *time.Time
	FilterMonth    *time.Month
	Query          string
	SortDescending bool
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func (c ListCriteria) matches(event *model.Event) bool {
	if c.FilterDate != nil {
		if !sameDay(event.Date, *c.FilterDate) {
			return false
		}
	} else if c.FilterMonth != nil {
		if event.Date.Month() != *c.FilterMonth {
			return false
		}
	}

	query := strings.ToLower(strings.TrimSpace(c.Query))
	if query == "" {
		return true
	}
	haystack := event.Title + " " + event.Location + " " + event.City
	if event.OwnerName != nil {
		haystack += " " + *event.OwnerName
	}
	return strings.Contains(strings.ToLower(haystack), query)
}

// Apply derives the filtered, sorted view without mutating its input.
func (c ListCriteria) Apply(events []*model.Event) []*model.Event {
	out := make([]*model.Event, 0, len(events))
	for _, event := range events {
		if c.matches(event) {
			out = append(out, event)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c.SortDescending {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// EventListModel turns a loaded event list into a filtered, sorted
// presentation list. Loader failures never propagate: they are logged,
// recorded as an alert and the list is emptied rather than kept stale.
// Overlapping refreshes are resolved by a generation counter, so a
// superseded call's result is discarded ("last to start wins").
type EventListModel struct {
	mu       sync.Mutex
	loader   EventLoader
	log      *zap.Logger
	alertFmt Alert

	generation uint64
	loading    bool
	events     []*model.Event
	criteria   ListCriteria
	lastAlert  *Alert
}

// NewEventListModel builds a model around a loader. alertTitle and
// alertMessage configure the alert shown on load failure.
func NewEventListModel(loader EventLoader, alertTitle, alertMessage string, log *zap.Logger) *EventListModel {
	return &EventListModel{
		loader:   loader,
		log:      log,
		alertFmt: Alert{Title: alertTitle, Message: alertMessage},
		events:   make([]*model.Event, 0),
	}
}

// Refresh reloads the raw list through the injected loader.
func (m *EventListModel) Refresh(ctx context.Context) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.loading = true
	m.mu.Unlock()

	events, err := m.loader(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		// A newer refresh started while this one was in flight; its
		// result owns the state, not ours.
		m.log.Info("discarding superseded refresh result", zap.Uint64("generation", gen))
		return
	}
	m.loading = false
	if err != nil {
		m.log.Error("event list load failed", zap.Error(err))
		m.events = make([]*model.Event, 0)
		alert := m.alertFmt
		m.lastAlert = &alert
		return
	}
	m.events = events
	m.lastAlert = nil
}

func (m *EventListModel) SetCriteria(criteria ListCriteria) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria = criteria
}

func (m *EventListModel) SetQuery(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria.Query = query
}

func (m *EventListModel) SetFilterDate(date *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria.FilterDate = date
}

func (m *EventListModel) SetFilterMonth(month *time.Month) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria.FilterMonth = month
}

func (m *EventListModel) SetSortDescending(desc bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria.SortDescending = desc
}

// Events returns the filtered, sorted view. It is derived on every call,
// never stored.
func (m *EventListModel) Events() []*model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.criteria.Apply(m.events)
}

func (m *EventListModel) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// LastAlert returns the alert from the most recent failed refresh, or nil
// after a successful one.
func (m *EventListModel) LastAlert() *Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastAlert == nil {
		return nil
	}
	alert := *m.lastAlert
	return &alert
}
