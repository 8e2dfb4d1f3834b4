package property

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Type represents property type (matches property_type enum)
type Type string

const (
	TypeApartment Type = "apartment"
	TypeVilla     Type = "villa"
	TypeTownhouse Type = "townhouse"
	TypeStudio    Type = "studio"
	TypePenthouse Type = "penthouse"
)

// RentalKind distinguishes nightly bookings from long-term leases
type RentalKind string

const (
	RentalShortTerm RentalKind = "short_term"
	RentalLongTerm  RentalKind = "long_term"
)

// Property represents a rental listing (matches properties table)
type Property struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	// Owner (FK to users, host or agent)
	HostID uuid.UUID `db:"host_id"`

	// Basic info
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Type        Type       `db:"property_type"`
	RentalKind  RentalKind `db:"rental_kind"`

	// Location
	Emirate   string          `db:"emirate"`
	City      string          `db:"city"`
	Address   sql.NullString  `db:"address"`
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`

	// Capacity
	Bedrooms  int `db:"bedrooms"`
	Bathrooms int `db:"bathrooms"`
	Guests    int `db:"guests"`

	// Pricing (AED)
	BasePrice       float64         `db:"base_price"`
	CleaningFee     sql.NullFloat64 `db:"cleaning_fee"`
	SecurityDeposit sql.NullFloat64 `db:"security_deposit"`
	AnnualRent      sql.NullFloat64 `db:"annual_rent"`

	// Flags
	IsInstantBook bool `db:"is_instant_book"`
	IsActive      bool `db:"is_active"`

	Amenities pq.StringArray `db:"amenities"`

	// Stats
	ViewCount    int             `db:"view_count"`
	RatingScore  sql.NullFloat64 `db:"rating_score"`
	ReviewsCount int             `db:"reviews_count"`

	// Joined data (not in DB, populated by queries)
	HostName string `db:"-"`
}

// CanBeEditedBy checks if user can edit this listing
func (p *Property) CanBeEditedBy(userID uuid.UUID) bool {
	return p.HostID == userID
}

// EffectiveCleaningFee returns the cleaning fee, defaulting to zero
func (p *Property) EffectiveCleaningFee() float64 {
	if p.CleaningFee.Valid {
		return p.CleaningFee.Float64
	}
	return 0
}

// EffectiveSecurityDeposit returns the security deposit, defaulting to zero
func (p *Property) EffectiveSecurityDeposit() float64 {
	if p.SecurityDeposit.Valid {
		return p.SecurityDeposit.Float64
	}
	return 0
}

// Photo represents a listing photo (matches property_photos table)
type Photo struct {
	ID         uuid.UUID `db:"id"`
	PropertyID uuid.UUID `db:"property_id"`
	ObjectKey  string    `db:"object_key"`
	ThumbKey   string    `db:"thumb_key"`
	URL        string    `db:"url"`
	ThumbURL   string    `db:"thumb_url"`
	Position   int       `db:"position"`
	CreatedAt  time.Time `db:"created_at"`
}
