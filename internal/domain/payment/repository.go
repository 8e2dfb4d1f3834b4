package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines payment data access interface
type Repository interface {
	// CreateTx inserts a payment inside an existing transaction.
	// Used by the booking service so booking and payment rows commit together.
	CreateTx(ctx context.Context, tx *sqlx.Tx, p *Payment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Payment, int, error)
	MarkPaid(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	// CancelPendingByBookingTx flips all pending payments of a booking to
	// cancelled inside the caller's transaction.
	CancelPendingByBookingTx(ctx context.Context, tx *sqlx.Tx, bookingID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

const paymentSelectColumns = `
	id, booking_id, user_id, payment_type, status,
	amount, currency, due_at, paid_at, created_at, updated_at
`

const paymentInsertQuery = `
	INSERT INTO payments (
		id, booking_id, user_id, payment_type, status,
		amount, currency, due_at, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTx(ctx context.Context, tx *sqlx.Tx, p *Payment) error {
	_, err := tx.ExecContext(ctx, paymentInsertQuery,
		p.ID, p.BookingID, p.UserID, p.Type, p.Status,
		p.Amount, p.Currency, p.DueAt, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	query := `SELECT ` + paymentSelectColumns + ` FROM payments WHERE id = $1`
	var p Payment
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Payment, error) {
	query := `SELECT ` + paymentSelectColumns + ` FROM payments WHERE booking_id = $1 ORDER BY created_at`
	var payments []*Payment
	err := r.db.SelectContext(ctx, &payments, query, bookingID)
	return payments, err
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + paymentSelectColumns + ` FROM payments
		WHERE user_id = $1
		ORDER BY due_at DESC
		LIMIT $2 OFFSET $3
	`
	var payments []*Payment
	if err := r.db.SelectContext(ctx, &payments, query, userID, limit, offset); err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE payments SET status = 'paid', paid_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotPayable
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	query := `UPDATE payments SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, status)
	return err
}

func (r *repository) CancelPendingByBookingTx(ctx context.Context, tx *sqlx.Tx, bookingID uuid.UUID) error {
	query := `
		UPDATE payments SET status = 'cancelled', updated_at = NOW()
		WHERE booking_id = $1 AND status = 'pending'
	`
	_, err := tx.ExecContext(ctx, query, bookingID)
	return err
}
