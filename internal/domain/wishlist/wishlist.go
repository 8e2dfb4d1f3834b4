package wishlist

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Item represents a saved listing
type Item struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	PropertyID uuid.UUID `json:"property_id" db:"property_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Repository for wishlist items
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates wishlist repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Add saves a listing for the user. Saving twice is a no-op returning the
// existing item.
func (r *Repository) Add(ctx context.Context, userID, propertyID uuid.UUID) (*Item, error) {
	item := &Item{
		ID:         uuid.New(),
		UserID:     userID,
		PropertyID: propertyID,
		CreatedAt:  time.Now(),
	}

	query := `
		INSERT INTO wishlist_items (id, user_id, property_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, property_id) DO NOTHING
		RETURNING id
	`
	var insertedID uuid.UUID
	err := r.db.GetContext(ctx, &insertedID, query,
		item.ID, item.UserID, item.PropertyID, item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.Get(ctx, userID, propertyID)
		}
		return nil, err
	}
	return item, nil
}

// Get returns the saved item, or nil when not saved
func (r *Repository) Get(ctx context.Context, userID, propertyID uuid.UUID) (*Item, error) {
	query := `SELECT * FROM wishlist_items WHERE user_id = $1 AND property_id = $2`
	var item Item
	err := r.db.GetContext(ctx, &item, query, userID, propertyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Remove unsaves a listing
func (r *Repository) Remove(ctx context.Context, userID, propertyID uuid.UUID) error {
	query := `DELETE FROM wishlist_items WHERE user_id = $1 AND property_id = $2`
	_, err := r.db.ExecContext(ctx, query, userID, propertyID)
	return err
}

// List returns the user's saved listings, newest first
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]*Item, error) {
	query := `SELECT * FROM wishlist_items WHERE user_id = $1 ORDER BY created_at DESC`
	var items []*Item
	err := r.db.SelectContext(ctx, &items, query, userID)
	return items, err
}
