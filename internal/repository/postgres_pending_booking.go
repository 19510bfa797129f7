package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinema-storefront/internal/domain"
)

type PostgresPendingBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPendingBookingRepository(db *pgxpool.Pool) *PostgresPendingBookingRepository {
	return &PostgresPendingBookingRepository{
		db: db,
	}
}

func (p *PostgresPendingBookingRepository) Create(ctx context.Context, booking *domain.PendingBooking) error {
	query := `
		INSERT INTO pending_bookings (
			attempt_id,
			booking_id,
			customer_id,
			stage,
			error
		)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		booking.AttemptID,
		booking.BookingID,
		booking.CustomerID,
		booking.Stage,
		booking.Error,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateAttempt
		}

		return err
	}

	return nil
}

func (p *PostgresPendingBookingRepository) GetUnresolved(ctx context.Context, limit int) ([]domain.PendingBooking, error) {
	query := `
		SELECT id, attempt_id, booking_id, customer_id, stage, error,
			attempts, last_error, resolved_at, abandoned_at, created_at, updated_at
		FROM pending_bookings
		WHERE resolved_at IS NULL AND abandoned_at IS NULL
		ORDER BY created_at ASC, id ASC
		LIMIT $1
	`

	rows, err := p.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	bookings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PendingBooking, error) {
		var b domain.PendingBooking

		err := row.Scan(
			&b.ID,
			&b.AttemptID,
			&b.BookingID,
			&b.CustomerID,
			&b.Stage,
			&b.Error,
			&b.Attempts,
			&b.LastError,
			&b.ResolvedAt,
			&b.AbandonedAt,
			&b.CreatedAt,
			&b.UpdatedAt,
		)

		return b, err
	})
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (p *PostgresPendingBookingRepository) MarkResolved(ctx context.Context, id int) error {
	query := `UPDATE pending_bookings
		SET resolved_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND resolved_at IS NULL`

	tag, err := p.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (p *PostgresPendingBookingRepository) RecordAttempt(ctx context.Context, id int, errMsg string) error {
	query := `UPDATE pending_bookings
		SET attempts = attempts + 1, last_error = $1, updated_at = NOW()
		WHERE id = $2`

	tag, err := p.db.Exec(ctx, query, errMsg, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

// MarkAbandoned records the final failed attempt and takes the shell out of
// reconciliation.
func (p *PostgresPendingBookingRepository) MarkAbandoned(ctx context.Context, id int, errMsg string) error {
	query := `UPDATE pending_bookings
		SET attempts = attempts + 1, last_error = $1, abandoned_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND resolved_at IS NULL AND abandoned_at IS NULL`

	tag, err := p.db.Exec(ctx, query, errMsg, id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}
