package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GuestRepository interface {
	Create(ctx context.Context, guest *model.Guest) (*model.Guest, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Guest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Guest, error)
	Update(ctx context.Context, id uuid.UUID, params model.UpdateGuestParams) (*model.Guest, error)
	UpdateSeating(ctx context.Context, id uuid.UUID, tableID *uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type GuestRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewGuestRepository(pool *pgxpool.Pool) GuestRepository {
	return &GuestRepositoryImpl{
		pool: pool,
	}
}

const guestColumns = `id, event_id, name, phone, status, table_id, gift_amount, message, category, number_of_people`

func scanGuest(row pgx.Row) (*model.Guest, error) {
	var guest model.Guest
	err := row.Scan(
		&guest.ID,
		&guest.EventID,
		&guest.Name,
		&guest.Phone,
		&guest.Status,
		&guest.TableID,
		&guest.GiftAmount,
		&guest.Message,
		&guest.Category,
		&guest.NumberOfPeople,
	)
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

func (r *GuestRepositoryImpl) Create(ctx context.Context, guest *model.Guest) (*model.Guest, error) {
	if guest.ID == uuid.Nil {
		guest.ID = uuid.New()
	}
	if guest.Status == "" {
		guest.Status = model.RSVPPending
	}
	if guest.NumberOfPeople < 1 {
		guest.NumberOfPeople = 1
	}

	query := `
		INSERT INTO guests (id, event_id, name, phone, status, table_id, gift_amount, message, category, number_of_people)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.pool.Exec(ctx, query,
		guest.ID, guest.EventID, guest.Name, guest.Phone, guest.Status,
		guest.TableID, guest.GiftAmount, guest.Message, guest.Category, guest.NumberOfPeople,
	)
	if err != nil {
		return nil, err
	}
	return guest, nil
}

func (r *GuestRepositoryImpl) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*model.Guest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM guests
		WHERE event_id = $1
		ORDER BY name ASC
	`, guestColumns)

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guests := make([]*model.Guest, 0)
	for rows.Next() {
		guest, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, guest)
	}
	return guests, rows.Err()
}

func (r *GuestRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Guest, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM guests
		WHERE id = $1
	`, guestColumns)

	guest, err := scanGuest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrGuestNotFound
		}
		return nil, err
	}
	return guest, nil
}

func (r *GuestRepositoryImpl) Update(ctx context.Context, id uuid.UUID, params model.UpdateGuestParams) (*model.Guest, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Phone != nil {
		add("phone", *params.Phone)
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.GiftAmount != nil {
		add("gift_amount", *params.GiftAmount)
	}
	if params.Message != nil {
		add("message", *params.Message)
	}
	if params.Category != nil {
		add("category", *params.Category)
	}
	if params.NumberOfPeople != nil {
		add("number_of_people", *params.NumberOfPeople)
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE guests
		SET %s
		WHERE id = $%d
	`, strings.Join(sets, ", "), argPos)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrGuestNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *GuestRepositoryImpl) UpdateSeating(ctx context.Context, id uuid.UUID, tableID *uuid.UUID) error {
	query := `
		UPDATE guests
		SET table_id = $1
		WHERE id = $2
	`
	tag, err := r.pool.Exec(ctx, query, tableID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrGuestNotFound
	}
	return nil
}

func (r *GuestRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM guests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrGuestNotFound
	}
	return nil
}
