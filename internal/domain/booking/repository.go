package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/krib/krib-api/internal/domain/payment"
)

// conflictStatuses are the booking states that block overlapping dates.
// Confirmed bookings hold their dates the same way pending ones do.
const conflictStatuses = `('pending', 'confirmed')`

// Repository defines booking data access interface
type Repository interface {
	// CreateWithPayments inserts the booking and its payment rows in one
	// transaction. The date-conflict check is re-run inside the transaction
	// under a per-property advisory lock, so two concurrent requests for
	// overlapping dates cannot both commit. Returns ErrDatesUnavailable
	// when the re-check finds an overlap.
	CreateWithPayments(ctx context.Context, b *Booking, payments []*payment.Payment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Update rewrites the booking's dates, guest count and pricing. The
	// date-conflict check is re-run inside the transaction under the same
	// per-property advisory lock as CreateWithPayments, excluding the
	// booking's own row, so an update racing a concurrent create cannot
	// commit overlapping dates. Returns ErrDatesUnavailable on overlap.
	Update(ctx context.Context, b *Booking) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	// CancelWithPayments marks the booking cancelled and cascades the
	// cancellation to its pending payment rows in one transaction.
	CancelWithPayments(ctx context.Context, id uuid.UUID, reason string) error

	// FindConflicts returns pending/confirmed bookings of the property
	// overlapping [checkIn, checkOut), excluding excludeID when non-nil.
	FindConflicts(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*Booking, error)

	ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*Booking, int, error)
	ListByHost(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*Booking, int, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Booking, error)
}

type repository struct {
	db          *sqlx.DB
	paymentRepo payment.Repository
}

const bookingSelectColumns = `
	b.id, b.property_id, b.guest_id, b.check_in, b.check_out, b.guests,
	b.nights, b.base_amount, b.cleaning_fee, b.service_fee, b.total_amount,
	b.status, b.message, b.special_requests, b.cancel_reason,
	b.created_at, b.updated_at
`

// NewRepository creates booking repository
func NewRepository(db *sqlx.DB, paymentRepo payment.Repository) Repository {
	return &repository{db: db, paymentRepo: paymentRepo}
}

func (r *repository) CreateWithPayments(ctx context.Context, b *Booking, payments []*payment.Payment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Warn().Err(err).Msg("booking tx rollback failed")
		}
	}()

	// Serialize concurrent creates for the same property. The lock is
	// released automatically at commit or rollback.
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`,
		b.PropertyID,
	); err != nil {
		return fmt.Errorf("failed to lock property: %w", err)
	}

	var conflicts int
	err = tx.GetContext(ctx, &conflicts, `
		SELECT COUNT(*) FROM bookings
		WHERE property_id = $1
		  AND status IN `+conflictStatuses+`
		  AND check_out > $2 AND check_in < $3
	`, b.PropertyID, b.CheckIn, b.CheckOut)
	if err != nil {
		return fmt.Errorf("failed to check conflicts: %w", err)
	}
	if conflicts > 0 {
		return ErrDatesUnavailable
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (
			id, property_id, guest_id, check_in, check_out, guests,
			nights, base_amount, cleaning_fee, service_fee, total_amount,
			status, message, special_requests, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16
		)
	`,
		b.ID, b.PropertyID, b.GuestID, b.CheckIn, b.CheckOut, b.Guests,
		b.Nights, b.BaseAmount, b.CleaningFee, b.ServiceFee, b.TotalAmount,
		b.Status, b.Message, b.SpecialRequests, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	for _, p := range payments {
		if err := r.paymentRepo.CreateTx(ctx, tx, p); err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	query := `
		SELECT ` + bookingSelectColumns + `
		FROM bookings b
		WHERE b.id = $1
	`
	var b Booking
	err := r.db.GetContext(ctx, &b, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) Update(ctx context.Context, b *Booking) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Warn().Err(err).Msg("booking update tx rollback failed")
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`,
		b.PropertyID,
	); err != nil {
		return fmt.Errorf("failed to lock property: %w", err)
	}

	var conflicts int
	err = tx.GetContext(ctx, &conflicts, `
		SELECT COUNT(*) FROM bookings
		WHERE property_id = $1
		  AND id <> $2
		  AND status IN `+conflictStatuses+`
		  AND check_out > $3 AND check_in < $4
	`, b.PropertyID, b.ID, b.CheckIn, b.CheckOut)
	if err != nil {
		return fmt.Errorf("failed to check conflicts: %w", err)
	}
	if conflicts > 0 {
		return ErrDatesUnavailable
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings SET
			check_in = $2, check_out = $3, guests = $4,
			nights = $5, base_amount = $6, cleaning_fee = $7,
			service_fee = $8, total_amount = $9,
			special_requests = $10, updated_at = NOW()
		WHERE id = $1
	`,
		b.ID,
		b.CheckIn, b.CheckOut, b.Guests,
		b.Nights, b.BaseAmount, b.CleaningFee,
		b.ServiceFee, b.TotalAmount,
		b.SpecialRequests,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking update: %w", err)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *repository) CancelWithPayments(ctx context.Context, id uuid.UUID, reason string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Warn().Err(err).Msg("cancel tx rollback failed")
		}
	}()

	_, err = tx.ExecContext(ctx, `
		UPDATE bookings SET status = 'cancelled', cancel_reason = NULLIF($2, ''), updated_at = NOW()
		WHERE id = $1
	`, id, reason)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	if err := r.paymentRepo.CancelPendingByBookingTx(ctx, tx, id); err != nil {
		return fmt.Errorf("failed to cancel payments: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cancellation: %w", err)
	}
	return nil
}

func (r *repository) FindConflicts(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*Booking, error) {
	query := `
		SELECT ` + bookingSelectColumns + `
		FROM bookings b
		WHERE b.property_id = $1
		  AND b.status IN ` + conflictStatuses + `
		  AND b.check_out > $2 AND b.check_in < $3
	`
	args := []interface{}{propertyID, checkIn, checkOut}
	if excludeID != nil {
		query += ` AND b.id <> $4`
		args = append(args, *excludeID)
	}
	query += ` ORDER BY b.check_in`

	var bookings []*Booking
	err := r.db.SelectContext(ctx, &bookings, query, args...)
	return bookings, err
}

func (r *repository) ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookings WHERE guest_id = $1`, guestID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + bookingSelectColumns + `
		FROM bookings b
		WHERE b.guest_id = $1
		ORDER BY b.check_in DESC
		LIMIT $2 OFFSET $3
	`
	var bookings []*Booking
	if err := r.db.SelectContext(ctx, &bookings, query, guestID, limit, offset); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *repository) ListByHost(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM bookings b
		JOIN properties p ON p.id = b.property_id
		WHERE p.host_id = $1
	`, hostID)
	if err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + bookingSelectColumns + `
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		WHERE p.host_id = $1
		ORDER BY b.check_in DESC
		LIMIT $2 OFFSET $3
	`
	var bookings []*Booking
	if err := r.db.SelectContext(ctx, &bookings, query, hostID, limit, offset); err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *repository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*Booking, error) {
	query := `
		SELECT ` + bookingSelectColumns + `
		FROM bookings b
		WHERE b.property_id = $1
		ORDER BY b.check_in DESC
	`
	var bookings []*Booking
	err := r.db.SelectContext(ctx, &bookings, query, propertyID)
	return bookings, err
}
