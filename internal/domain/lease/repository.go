package lease

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines lease data access
type Repository interface {
	Create(ctx context.Context, l *Lease) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lease, error)
	ListByApplicant(ctx context.Context, applicantID uuid.UUID, limit, offset int) ([]*Lease, int, error)
	ListByHost(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*Lease, int, error)
	HasOpenApplication(ctx context.Context, applicantID, propertyID uuid.UUID) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, decidedAt time.Time) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates lease repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *Lease) error {
	query := `
		INSERT INTO leases (
			id, property_id, applicant_id, move_in, months,
			monthly_rent, annual_rent, total_amount, currency,
			status, message, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.PropertyID, l.ApplicantID, l.MoveIn, l.Months,
		l.MonthlyRent, l.AnnualRent, l.TotalAmount, l.Currency,
		l.Status, l.Message, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Lease, error) {
	query := `
		SELECT l.*, p.title AS property_title, p.host_id
		FROM leases l
		JOIN properties p ON p.id = l.property_id
		WHERE l.id = $1
	`
	var l Lease
	err := r.db.GetContext(ctx, &l, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) ListByApplicant(ctx context.Context, applicantID uuid.UUID, limit, offset int) ([]*Lease, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM leases WHERE applicant_id = $1`, applicantID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT l.*, p.title AS property_title, p.host_id
		FROM leases l
		JOIN properties p ON p.id = l.property_id
		WHERE l.applicant_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2 OFFSET $3
	`
	var leases []*Lease
	if err := r.db.SelectContext(ctx, &leases, query, applicantID, limit, offset); err != nil {
		return nil, 0, err
	}
	return leases, total, nil
}

func (r *repository) ListByHost(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*Lease, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*)
		FROM leases l
		JOIN properties p ON p.id = l.property_id
		WHERE p.host_id = $1`, hostID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT l.*, p.title AS property_title, p.host_id
		FROM leases l
		JOIN properties p ON p.id = l.property_id
		WHERE p.host_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2 OFFSET $3
	`
	var leases []*Lease
	if err := r.db.SelectContext(ctx, &leases, query, hostID, limit, offset); err != nil {
		return nil, 0, err
	}
	return leases, total, nil
}

func (r *repository) HasOpenApplication(ctx context.Context, applicantID, propertyID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM leases
			WHERE applicant_id = $1 AND property_id = $2
			  AND status IN ('submitted', 'under_review')
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, applicantID, propertyID)
	return exists, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, decidedAt time.Time) error {
	query := `
		UPDATE leases
		SET status = $2, decided_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id, status, decidedAt)
	return err
}
