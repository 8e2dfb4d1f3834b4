package review

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository handles review database operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates review repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a review
func (r *Repository) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (id, property_id, guest_id, booking_id, rating, comment, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		review.ID, review.PropertyID, review.GuestID, review.BookingID,
		review.Rating, review.Comment, review.IsPublic,
		review.CreatedAt, review.UpdatedAt,
	)
	return err
}

// GetByID returns a review, nil when absent
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	query := `SELECT * FROM reviews WHERE id = $1`
	var review Review
	err := r.db.GetContext(ctx, &review, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &review, err
}

// ListByProperty returns public reviews for a property
func (r *Repository) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]Review, error) {
	query := `
		SELECT * FROM reviews
		WHERE property_id = $1 AND is_public = true
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var reviews []Review
	err := r.db.SelectContext(ctx, &reviews, query, propertyID, limit, offset)
	return reviews, err
}

// CountByProperty returns total public reviews for a property
func (r *Repository) CountByProperty(ctx context.Context, propertyID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE property_id = $1 AND is_public = true`
	var count int
	err := r.db.GetContext(ctx, &count, query, propertyID)
	return count, err
}

// AverageRating returns the property's average rating
func (r *Repository) AverageRating(ctx context.Context, propertyID uuid.UUID) (float64, error) {
	query := `SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE property_id = $1 AND is_public = true`
	var avg float64
	err := r.db.GetContext(ctx, &avg, query, propertyID)
	return avg, err
}

// RatingDistribution returns the count of each rating value
func (r *Repository) RatingDistribution(ctx context.Context, propertyID uuid.UUID) (map[int]int, error) {
	query := `
		SELECT rating, COUNT(*) as count
		FROM reviews
		WHERE property_id = $1 AND is_public = true
		GROUP BY rating
	`
	type ratingCount struct {
		Rating int `db:"rating"`
		Count  int `db:"count"`
	}
	var counts []ratingCount
	if err := r.db.SelectContext(ctx, &counts, query, propertyID); err != nil {
		return nil, err
	}

	dist := make(map[int]int)
	for i := 1; i <= 5; i++ {
		dist[i] = 0
	}
	for _, c := range counts {
		dist[c.Rating] = c.Count
	}
	return dist, nil
}

// Delete removes a review
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM reviews WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// HasReviewed checks if the guest already reviewed this property
func (r *Repository) HasReviewed(ctx context.Context, propertyID, guestID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE property_id = $1 AND guest_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, propertyID, guestID)
	return exists, err
}

// HasCompletedStay checks whether the guest finished a booking at the
// property, the precondition for reviewing it.
func (r *Repository) HasCompletedStay(ctx context.Context, propertyID, guestID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE property_id = $1 AND guest_id = $2 AND status = 'completed'
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, propertyID, guestID)
	return exists, err
}
