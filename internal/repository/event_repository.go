package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context) ([]*model.Event, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Event, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error)
	SaveTasks(ctx context.Context, id uuid.UUID, tasks []model.Task) error
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

const eventColumns = `e.id, e.owner_id, e.title, e.date, e.location, e.city, e.narrative,
	e.guest_estimate, e.budget, e.tasks, e.created_at, e.updated_at, u.full_name`

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	var tasksJSON []byte
	err := row.Scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.Date,
		&event.Location,
		&event.City,
		&event.Narrative,
		&event.GuestEstimate,
		&event.Budget,
		&tasksJSON,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.OwnerName,
	)
	if err != nil {
		return nil, err
	}
	event.Tasks = make([]model.Task, 0)
	if len(tasksJSON) > 0 {
		if err := json.Unmarshal(tasksJSON, &event.Tasks); err != nil {
			return nil, fmt.Errorf("unmarshal tasks: %w", err)
		}
	}
	return &event, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Tasks == nil {
		event.Tasks = make([]model.Task, 0)
	}
	tasksJSON, err := json.Marshal(event.Tasks)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}

	query := `
		INSERT INTO events (id, owner_id, title, date, location, city, narrative, guest_estimate, budget, tasks)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err = r.pool.QueryRow(ctx, query,
		event.ID, event.OwnerID, event.Title, event.Date, event.Location,
		event.City, event.Narrative, event.GuestEstimate, event.Budget, tasksJSON,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context) ([]*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN users u ON u.id = e.owner_id
		ORDER BY e.date ASC
	`, eventColumns)
	return r.queryEvents(ctx, query)
}

func (r *EventRepositoryImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN users u ON u.id = e.owner_id
		WHERE e.owner_id = $1
		ORDER BY e.date ASC
	`, eventColumns)
	return r.queryEvents(ctx, query, ownerID)
}

func (r *EventRepositoryImpl) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*model.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		JOIN users u ON u.id = e.owner_id
		WHERE e.id = $1
	`, eventColumns)

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id uuid.UUID, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Title != nil {
		add("title", *params.Title)
	}
	if params.Date != nil {
		add("date", *params.Date)
	}
	if params.Location != nil {
		add("location", *params.Location)
	}
	if params.City != nil {
		add("city", *params.City)
	}
	if params.Narrative != nil {
		add("narrative", *params.Narrative)
	}
	if params.GuestEstimate != nil {
		add("guest_estimate", *params.GuestEstimate)
	}
	if params.Budget != nil {
		add("budget", *params.Budget)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	add("updated_at", time.Now().UTC())
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE id = $%d
	`, strings.Join(sets, ", "), argPos)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrEventNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *EventRepositoryImpl) SaveTasks(ctx context.Context, id uuid.UUID, tasks []model.Task) error {
	if tasks == nil {
		tasks = make([]model.Task, 0)
	}
	tasksJSON, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}

	query := `
		UPDATE events
		SET tasks = $1, updated_at = $2
		WHERE id = $3
	`
	tag, err := r.pool.Exec(ctx, query, tasksJSON, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}
