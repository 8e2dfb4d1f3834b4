package property

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/krib/krib-api/internal/middleware"
)

// Filter represents search filters
type Filter struct {
	Query      *string
	Emirate    *string
	City       *string
	Type       *Type
	RentalKind *RentalKind
	PriceMin   *float64
	PriceMax   *float64
	Guests     *int
	Bedrooms   *int
	HostID     *uuid.UUID
	Amenities  []string
	// ActiveOnly defaults to true for public listings
	IncludeInactive bool
}

// SortBy represents sort options
type SortBy string

const (
	SortByNewest    SortBy = "newest"
	SortByPriceAsc  SortBy = "price_asc"
	SortByPriceDesc SortBy = "price_desc"
	SortByPopular   SortBy = "popular"
)

// Pagination for listing
type Pagination struct {
	Page  int
	Limit int
}

// Repository defines property data access interface
type Repository interface {
	Create(ctx context.Context, p *Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*Property, error)
	Update(ctx context.Context, p *Property) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *Filter, sortBy SortBy, pagination *Pagination) ([]*Property, int, error)
	ListByHost(ctx context.Context, hostID uuid.UUID, pagination *Pagination) ([]*Property, int, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	UpdateRating(ctx context.Context, id uuid.UUID, score float64, count int) error

	AddPhoto(ctx context.Context, photo *Photo) error
	GetPhoto(ctx context.Context, id uuid.UUID) (*Photo, error)
	ListPhotos(ctx context.Context, propertyID uuid.UUID) ([]*Photo, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

const propertySelectColumns = `
	id, host_id, title, description, property_type, rental_kind,
	emirate, city, address, latitude, longitude,
	bedrooms, bathrooms, guests,
	base_price, cleaning_fee, security_deposit, annual_rent,
	is_instant_book, is_active, amenities,
	view_count, rating_score, reviews_count,
	created_at, updated_at
`

// NewRepository creates property repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, p *Property) error {
	query := `
		INSERT INTO properties (
			id, host_id, title, description, property_type, rental_kind,
			emirate, city, address, latitude, longitude,
			bedrooms, bathrooms, guests,
			base_price, cleaning_fee, security_deposit, annual_rent,
			is_instant_book, is_active, amenities,
			view_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21,
			$22, $23, $24
		)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.HostID, p.Title, p.Description, p.Type, p.RentalKind,
		p.Emirate, p.City, p.Address, p.Latitude, p.Longitude,
		p.Bedrooms, p.Bathrooms, p.Guests,
		p.BasePrice, p.CleaningFee, p.SecurityDeposit, p.AnnualRent,
		p.IsInstantBook, p.IsActive, p.Amenities,
		p.ViewCount, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		log.Error().
			Str("request_id", middleware.GetRequestID(ctx)).
			Str("query", "properties.create").
			Str("property_id", p.ID.String()).
			Str("host_id", p.HostID.String()).
			Err(err).
			Msg("property insert failed")
		return mapDBError(err)
	}
	return nil
}

func mapDBError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23514":
		if strings.Contains(strings.ToLower(pqErr.Constraint), "price") {
			return fmt.Errorf("%w: %w", ErrInvalidPriceRange, err)
		}
		return err
	case "23503":
		return fmt.Errorf("%w: %w", ErrInvalidHostRef, err)
	default:
		return err
	}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	query := `SELECT ` + propertySelectColumns + ` FROM properties WHERE id = $1 AND deleted_at IS NULL`

	var p Property
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) Update(ctx context.Context, p *Property) error {
	query := `
		UPDATE properties SET
			title = $2, description = $3, property_type = $4, rental_kind = $5,
			emirate = $6, city = $7, address = $8, latitude = $9, longitude = $10,
			bedrooms = $11, bathrooms = $12, guests = $13,
			base_price = $14, cleaning_fee = $15, security_deposit = $16, annual_rent = $17,
			is_instant_book = $18, is_active = $19, amenities = $20,
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Title, p.Description, p.Type, p.RentalKind,
		p.Emirate, p.City, p.Address, p.Latitude, p.Longitude,
		p.Bedrooms, p.Bathrooms, p.Guests,
		p.BasePrice, p.CleaningFee, p.SecurityDeposit, p.AnnualRent,
		p.IsInstantBook, p.IsActive, p.Amenities,
	)
	if err != nil {
		return mapDBError(err)
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE properties SET is_active = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, active)
	return err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE properties SET deleted_at = NOW(), is_active = false WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *repository) List(ctx context.Context, filter *Filter, sortBy SortBy, pagination *Pagination) ([]*Property, int, error) {
	conditions := []string{"p.deleted_at IS NULL"}
	args := []interface{}{}
	argIndex := 1

	if !filter.IncludeInactive {
		conditions = append(conditions, "p.is_active = true")
	}

	if filter.Emirate != nil && *filter.Emirate != "" {
		conditions = append(conditions, fmt.Sprintf("p.emirate = $%d", argIndex))
		args = append(args, *filter.Emirate)
		argIndex++
	}

	if filter.City != nil && *filter.City != "" {
		conditions = append(conditions, fmt.Sprintf("p.city ILIKE $%d", argIndex))
		args = append(args, "%"+*filter.City+"%")
		argIndex++
	}

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("p.property_type = $%d", argIndex))
		args = append(args, *filter.Type)
		argIndex++
	}

	if filter.RentalKind != nil {
		conditions = append(conditions, fmt.Sprintf("p.rental_kind = $%d", argIndex))
		args = append(args, *filter.RentalKind)
		argIndex++
	}

	if filter.PriceMin != nil {
		conditions = append(conditions, fmt.Sprintf("p.base_price >= $%d", argIndex))
		args = append(args, *filter.PriceMin)
		argIndex++
	}

	if filter.PriceMax != nil {
		conditions = append(conditions, fmt.Sprintf("p.base_price <= $%d", argIndex))
		args = append(args, *filter.PriceMax)
		argIndex++
	}

	if filter.Guests != nil {
		conditions = append(conditions, fmt.Sprintf("p.guests >= $%d", argIndex))
		args = append(args, *filter.Guests)
		argIndex++
	}

	if filter.Bedrooms != nil {
		conditions = append(conditions, fmt.Sprintf("p.bedrooms >= $%d", argIndex))
		args = append(args, *filter.Bedrooms)
		argIndex++
	}

	if filter.HostID != nil {
		conditions = append(conditions, fmt.Sprintf("p.host_id = $%d", argIndex))
		args = append(args, *filter.HostID)
		argIndex++
	}

	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.description ILIKE $%d)",
			argIndex, argIndex,
		))
		args = append(args, "%"+*filter.Query+"%")
		argIndex++
	}

	if len(filter.Amenities) > 0 {
		conditions = append(conditions, fmt.Sprintf("p.amenities @> $%d", argIndex))
		args = append(args, pq.StringArray(filter.Amenities))
		argIndex++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	// Count total
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM properties p %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	var orderBy string
	switch sortBy {
	case SortByPriceAsc:
		orderBy = "ORDER BY p.base_price ASC"
	case SortByPriceDesc:
		orderBy = "ORDER BY p.base_price DESC"
	case SortByPopular:
		orderBy = "ORDER BY p.view_count DESC, p.reviews_count DESC"
	default:
		orderBy = "ORDER BY p.created_at DESC"
	}

	offset := (pagination.Page - 1) * pagination.Limit
	query := fmt.Sprintf(`
		SELECT %s FROM properties p
		%s %s
		LIMIT $%d OFFSET $%d
	`, propertySelectColumns, where, orderBy, argIndex, argIndex+1)
	args = append(args, pagination.Limit, offset)

	var properties []*Property
	if err := r.db.SelectContext(ctx, &properties, query, args...); err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

func (r *repository) ListByHost(ctx context.Context, hostID uuid.UUID, pagination *Pagination) ([]*Property, int, error) {
	countQuery := `SELECT COUNT(*) FROM properties WHERE host_id = $1 AND deleted_at IS NULL`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, hostID); err != nil {
		return nil, 0, err
	}

	offset := (pagination.Page - 1) * pagination.Limit
	query := `
		SELECT ` + propertySelectColumns + ` FROM properties
		WHERE host_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var properties []*Property
	if err := r.db.SelectContext(ctx, &properties, query, hostID, pagination.Limit, offset); err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

func (r *repository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE properties SET view_count = view_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *repository) UpdateRating(ctx context.Context, id uuid.UUID, score float64, count int) error {
	query := `UPDATE properties SET rating_score = $2, reviews_count = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id, score, count)
	return err
}

func (r *repository) AddPhoto(ctx context.Context, photo *Photo) error {
	query := `
		INSERT INTO property_photos (id, property_id, object_key, thumb_key, url, thumb_url, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		photo.ID, photo.PropertyID, photo.ObjectKey, photo.ThumbKey,
		photo.URL, photo.ThumbURL, photo.Position, photo.CreatedAt,
	)
	return err
}

func (r *repository) GetPhoto(ctx context.Context, id uuid.UUID) (*Photo, error) {
	query := `SELECT * FROM property_photos WHERE id = $1`
	var photo Photo
	err := r.db.GetContext(ctx, &photo, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &photo, nil
}

func (r *repository) ListPhotos(ctx context.Context, propertyID uuid.UUID) ([]*Photo, error) {
	query := `SELECT * FROM property_photos WHERE property_id = $1 ORDER BY position, created_at`
	var photos []*Photo
	err := r.db.SelectContext(ctx, &photos, query, propertyID)
	return photos, err
}

func (r *repository) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM property_photos WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
