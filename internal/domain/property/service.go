package property

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/krib/krib-api/internal/domain/user"
	"github.com/krib/krib-api/internal/pkg/imaging"
	"github.com/krib/krib-api/internal/pkg/storage"
)

// Service handles property business logic
type Service struct {
	repo      Repository
	userRepo  user.Repository
	storage   storage.Storage
	processor *imaging.Processor
}

// NewService creates property service
func NewService(repo Repository, userRepo user.Repository, st storage.Storage, processor *imaging.Processor) *Service {
	return &Service{
		repo:      repo,
		userRepo:  userRepo,
		storage:   st,
		processor: processor,
	}
}

// Create creates a new listing owned by the calling host or agent
func (s *Service) Create(ctx context.Context, hostID uuid.UUID, req *CreatePropertyRequest) (*Property, error) {
	u, err := s.userRepo.GetByID(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	if !u.CanManageProperties() {
		return nil, ErrOnlyHostsCanCreate
	}

	rentalKind := RentalShortTerm
	if req.RentalKind != "" {
		rentalKind = RentalKind(req.RentalKind)
	}

	now := time.Now()
	p := &Property{
		ID:            uuid.New(),
		HostID:        hostID,
		Title:         req.Title,
		Description:   req.Description,
		Type:          Type(req.Type),
		RentalKind:    rentalKind,
		Emirate:       req.Emirate,
		City:          req.City,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		Guests:        req.Guests,
		BasePrice:     req.BasePrice,
		IsInstantBook: req.IsInstantBook,
		IsActive:      true,
		Amenities:     pq.StringArray(req.Amenities),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Address != "" {
		p.Address = sql.NullString{String: req.Address, Valid: true}
	}
	if req.Latitude != nil {
		p.Latitude = sql.NullFloat64{Float64: *req.Latitude, Valid: true}
	}
	if req.Longitude != nil {
		p.Longitude = sql.NullFloat64{Float64: *req.Longitude, Valid: true}
	}
	if req.CleaningFee != nil {
		p.CleaningFee = sql.NullFloat64{Float64: *req.CleaningFee, Valid: true}
	}
	if req.SecurityDeposit != nil {
		p.SecurityDeposit = sql.NullFloat64{Float64: *req.SecurityDeposit, Valid: true}
	}
	if req.AnnualRent != nil {
		p.AnnualRent = sql.NullFloat64{Float64: *req.AnnualRent, Valid: true}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	log.Info().
		Str("property_id", p.ID.String()).
		Str("host_id", hostID.String()).
		Str("emirate", p.Emirate).
		Msg("property created")

	return p, nil
}

// GetByID returns a listing with its photos, bumping the view counter
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Property, []*Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get property: %w", err)
	}
	if p == nil {
		return nil, nil, ErrPropertyNotFound
	}

	photos, err := s.repo.ListPhotos(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list photos: %w", err)
	}

	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		log.Warn().Err(err).Str("property_id", id.String()).Msg("failed to increment view count")
	}

	return p, photos, nil
}

// Update applies partial changes to an owned listing
func (s *Service) Update(ctx context.Context, userID, propertyID uuid.UUID, req *UpdatePropertyRequest) (*Property, error) {
	p, err := s.getOwned(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		p.Title = req.Title
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Type != "" {
		p.Type = Type(req.Type)
	}
	if req.RentalKind != "" {
		p.RentalKind = RentalKind(req.RentalKind)
	}
	if req.Emirate != "" {
		p.Emirate = req.Emirate
	}
	if req.City != "" {
		p.City = req.City
	}
	if req.Address != "" {
		p.Address = sql.NullString{String: req.Address, Valid: true}
	}
	if req.Latitude != nil {
		p.Latitude = sql.NullFloat64{Float64: *req.Latitude, Valid: true}
	}
	if req.Longitude != nil {
		p.Longitude = sql.NullFloat64{Float64: *req.Longitude, Valid: true}
	}
	if req.Bedrooms != nil {
		p.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		p.Bathrooms = *req.Bathrooms
	}
	if req.Guests != nil {
		p.Guests = *req.Guests
	}
	if req.BasePrice != nil {
		p.BasePrice = *req.BasePrice
	}
	if req.CleaningFee != nil {
		p.CleaningFee = sql.NullFloat64{Float64: *req.CleaningFee, Valid: true}
	}
	if req.SecurityDeposit != nil {
		p.SecurityDeposit = sql.NullFloat64{Float64: *req.SecurityDeposit, Valid: true}
	}
	if req.AnnualRent != nil {
		p.AnnualRent = sql.NullFloat64{Float64: *req.AnnualRent, Valid: true}
	}
	if req.IsInstantBook != nil {
		p.IsInstantBook = *req.IsInstantBook
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.Amenities != nil {
		p.Amenities = pq.StringArray(req.Amenities)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	return p, nil
}

// Delete soft-deletes an owned listing
func (s *Service) Delete(ctx context.Context, userID, propertyID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, propertyID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, propertyID); err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	log.Info().
		Str("property_id", propertyID.String()).
		Str("user_id", userID.String()).
		Msg("property deleted")
	return nil
}

// List searches active listings
func (s *Service) List(ctx context.Context, filter *Filter, sortBy SortBy, pagination *Pagination) ([]*Property, int, error) {
	return s.repo.List(ctx, filter, sortBy, pagination)
}

// ListByHost returns all listings owned by a host, active or not
func (s *Service) ListByHost(ctx context.Context, hostID uuid.UUID, pagination *Pagination) ([]*Property, int, error) {
	return s.repo.ListByHost(ctx, hostID, pagination)
}

// UploadPhoto processes an uploaded image and stores original plus thumbnail
func (s *Service) UploadPhoto(ctx context.Context, userID, propertyID uuid.UUID, reader io.Reader) (*Photo, error) {
	if _, err := s.getOwned(ctx, userID, propertyID); err != nil {
		return nil, err
	}

	processed, err := s.processor.Process(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedMedia, err)
	}

	photoID := uuid.New()
	ext := "jpg"
	if processed.ContentType == "image/png" {
		ext = "png"
	}
	objectKey := fmt.Sprintf("properties/%s/%s.%s", propertyID, photoID, ext)
	thumbKey := fmt.Sprintf("properties/%s/%s_thumb.%s", propertyID, photoID, ext)

	if err := s.storage.Put(ctx, objectKey, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store photo: %w", err)
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		if delErr := s.storage.Delete(ctx, objectKey); delErr != nil {
			log.Warn().Err(delErr).Str("key", objectKey).Msg("failed to clean up orphaned photo")
		}
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	existing, err := s.repo.ListPhotos(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}

	photo := &Photo{
		ID:         photoID,
		PropertyID: propertyID,
		ObjectKey:  objectKey,
		ThumbKey:   thumbKey,
		URL:        s.storage.GetURL(objectKey),
		ThumbURL:   s.storage.GetURL(thumbKey),
		Position:   len(existing),
		CreatedAt:  time.Now(),
	}
	if err := s.repo.AddPhoto(ctx, photo); err != nil {
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	log.Info().
		Str("property_id", propertyID.String()).
		Str("photo_id", photoID.String()).
		Int("width", processed.Width).
		Int("height", processed.Height).
		Msg("photo uploaded")

	return photo, nil
}

// DeletePhoto removes a photo and its stored objects
func (s *Service) DeletePhoto(ctx context.Context, userID, propertyID, photoID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, propertyID); err != nil {
		return err
	}

	photo, err := s.repo.GetPhoto(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to get photo: %w", err)
	}
	if photo == nil || photo.PropertyID != propertyID {
		return ErrPhotoNotFound
	}

	if err := s.repo.DeletePhoto(ctx, photoID); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	if err := s.storage.Delete(ctx, photo.ObjectKey); err != nil {
		log.Warn().Err(err).Str("key", photo.ObjectKey).Msg("failed to delete stored photo")
	}
	if err := s.storage.Delete(ctx, photo.ThumbKey); err != nil {
		log.Warn().Err(err).Str("key", photo.ThumbKey).Msg("failed to delete stored thumbnail")
	}
	return nil
}

func (s *Service) getOwned(ctx context.Context, userID, propertyID uuid.UUID) (*Property, error) {
	p, err := s.repo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if p == nil {
		return nil, ErrPropertyNotFound
	}
	if !p.CanBeEditedBy(userID) {
		return nil, ErrNotPropertyOwner
	}
	return p, nil
}
