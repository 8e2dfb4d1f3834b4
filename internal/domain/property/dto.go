package property

import (
	"time"

	"github.com/google/uuid"
)

// CreatePropertyRequest for POST /properties
type CreatePropertyRequest struct {
	Title       string `json:"title" validate:"required,min=5,max=200"`
	Description string `json:"description" validate:"required,min=20,max=10000"`
	Type        string `json:"property_type" validate:"required,property_type"`
	RentalKind  string `json:"rental_kind" validate:"omitempty,rental_kind"`

	Emirate   string   `json:"emirate" validate:"required,emirate"`
	City      string   `json:"city" validate:"required,min=2,max=100"`
	Address   string   `json:"address" validate:"omitempty,max=500"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`

	Bedrooms  int `json:"bedrooms" validate:"gte=0,lte=20"`
	Bathrooms int `json:"bathrooms" validate:"gte=0,lte=20"`
	Guests    int `json:"guests" validate:"required,gte=1,lte=50"`

	BasePrice       float64  `json:"base_price" validate:"required,gt=0"`
	CleaningFee     *float64 `json:"cleaning_fee" validate:"omitempty,gte=0"`
	SecurityDeposit *float64 `json:"security_deposit" validate:"omitempty,gte=0"`
	AnnualRent      *float64 `json:"annual_rent" validate:"omitempty,gt=0"`

	IsInstantBook bool     `json:"is_instant_book"`
	Amenities     []string `json:"amenities" validate:"omitempty,max=50,dive,max=100"`
}

// UpdatePropertyRequest for PUT /properties/{id}
type UpdatePropertyRequest struct {
	Title       string `json:"title" validate:"omitempty,min=5,max=200"`
	Description string `json:"description" validate:"omitempty,min=20,max=10000"`
	Type        string `json:"property_type" validate:"omitempty,property_type"`
	RentalKind  string `json:"rental_kind" validate:"omitempty,rental_kind"`

	Emirate   string   `json:"emirate" validate:"omitempty,emirate"`
	City      string   `json:"city" validate:"omitempty,min=2,max=100"`
	Address   string   `json:"address" validate:"omitempty,max=500"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`

	Bedrooms  *int `json:"bedrooms" validate:"omitempty,gte=0,lte=20"`
	Bathrooms *int `json:"bathrooms" validate:"omitempty,gte=0,lte=20"`
	Guests    *int `json:"guests" validate:"omitempty,gte=1,lte=50"`

	BasePrice       *float64 `json:"base_price" validate:"omitempty,gt=0"`
	CleaningFee     *float64 `json:"cleaning_fee" validate:"omitempty,gte=0"`
	SecurityDeposit *float64 `json:"security_deposit" validate:"omitempty,gte=0"`
	AnnualRent      *float64 `json:"annual_rent" validate:"omitempty,gt=0"`

	IsInstantBook *bool    `json:"is_instant_book"`
	IsActive      *bool    `json:"is_active"`
	Amenities     []string `json:"amenities" validate:"omitempty,max=50,dive,max=100"`
}

// PhotoUploadRequest for POST /properties/{id}/photos
type PhotoUploadRequest struct {
	ContentType string `json:"content_type" validate:"required,oneof=image/jpeg image/png"`
}

// PhotoResponse represents a photo in API responses
type PhotoResponse struct {
	ID       uuid.UUID `json:"id"`
	URL      string    `json:"url"`
	ThumbURL string    `json:"thumb_url"`
	Position int       `json:"position"`
}

// PropertyResponse represents a listing in API responses
type PropertyResponse struct {
	ID       uuid.UUID `json:"id"`
	HostID   uuid.UUID `json:"host_id"`
	HostName string    `json:"host_name,omitempty"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"property_type"`
	RentalKind  string `json:"rental_kind"`

	Emirate   string   `json:"emirate"`
	City      string   `json:"city"`
	Address   *string  `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Bedrooms  int `json:"bedrooms"`
	Bathrooms int `json:"bathrooms"`
	Guests    int `json:"guests"`

	BasePrice       float64  `json:"base_price"`
	CleaningFee     float64  `json:"cleaning_fee"`
	SecurityDeposit float64  `json:"security_deposit"`
	AnnualRent      *float64 `json:"annual_rent,omitempty"`
	Currency        string   `json:"currency"`

	IsInstantBook bool     `json:"is_instant_book"`
	IsActive      bool     `json:"is_active"`
	Amenities     []string `json:"amenities,omitempty"`

	ViewCount    int      `json:"view_count"`
	RatingScore  *float64 `json:"rating_score,omitempty"`
	ReviewsCount int      `json:"reviews_count"`

	Photos []PhotoResponse `json:"photos,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResponseFromEntity converts a Property to its API representation
func ResponseFromEntity(p *Property) *PropertyResponse {
	resp := &PropertyResponse{
		ID:              p.ID,
		HostID:          p.HostID,
		HostName:        p.HostName,
		Title:           p.Title,
		Description:     p.Description,
		Type:            string(p.Type),
		RentalKind:      string(p.RentalKind),
		Emirate:         p.Emirate,
		City:            p.City,
		Bedrooms:        p.Bedrooms,
		Bathrooms:       p.Bathrooms,
		Guests:          p.Guests,
		BasePrice:       p.BasePrice,
		CleaningFee:     p.EffectiveCleaningFee(),
		SecurityDeposit: p.EffectiveSecurityDeposit(),
		Currency:        "AED",
		IsInstantBook:   p.IsInstantBook,
		IsActive:        p.IsActive,
		Amenities:       p.Amenities,
		ViewCount:       p.ViewCount,
		ReviewsCount:    p.ReviewsCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Address.Valid {
		resp.Address = &p.Address.String
	}
	if p.Latitude.Valid {
		resp.Latitude = &p.Latitude.Float64
	}
	if p.Longitude.Valid {
		resp.Longitude = &p.Longitude.Float64
	}
	if p.AnnualRent.Valid {
		resp.AnnualRent = &p.AnnualRent.Float64
	}
	if p.RatingScore.Valid {
		resp.RatingScore = &p.RatingScore.Float64
	}
	return resp
}

// PhotoResponseFromEntity converts a Photo to its API representation
func PhotoResponseFromEntity(ph *Photo) PhotoResponse {
	return PhotoResponse{
		ID:       ph.ID,
		URL:      ph.URL,
		ThumbURL: ph.ThumbURL,
		Position: ph.Position,
	}
}
