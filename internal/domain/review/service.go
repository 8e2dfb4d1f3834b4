package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/krib/krib-api/internal/domain/property"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrNotReviewOwner  = errors.New("you can only delete your own reviews")
	ErrNoCompletedStay = errors.New("reviews require a completed stay at the property")
	ErrAlreadyReviewed = errors.New("you have already reviewed this property")
)

// Service handles review business logic
type Service struct {
	repo         *Repository
	propertyRepo property.Repository
}

// NewService creates review service
func NewService(repo *Repository, propertyRepo property.Repository) *Service {
	return &Service{repo: repo, propertyRepo: propertyRepo}
}

// Create posts a review. Only guests with a completed booking at the
// property may review it, once.
func (s *Service) Create(ctx context.Context, guestID uuid.UUID, req *CreateRequest) (*Review, error) {
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("invalid property id: %w", err)
	}

	prop, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if prop == nil {
		return nil, property.ErrPropertyNotFound
	}

	stayed, err := s.repo.HasCompletedStay(ctx, propertyID, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to check stays: %w", err)
	}
	if !stayed {
		return nil, ErrNoCompletedStay
	}

	reviewed, err := s.repo.HasReviewed(ctx, propertyID, guestID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if reviewed {
		return nil, ErrAlreadyReviewed
	}

	now := time.Now()
	review := &Review{
		ID:         uuid.New(),
		PropertyID: propertyID,
		GuestID:    guestID,
		Rating:     req.Rating,
		IsPublic:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.Comment != "" {
		review.Comment = sql.NullString{String: req.Comment, Valid: true}
	}
	if req.BookingID != "" {
		if bookingID, err := uuid.Parse(req.BookingID); err == nil {
			review.BookingID = uuid.NullUUID{UUID: bookingID, Valid: true}
		}
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.refreshPropertyRating(ctx, propertyID)

	log.Info().
		Str("review_id", review.ID.String()).
		Str("property_id", propertyID.String()).
		Int("rating", req.Rating).
		Msg("review created")
	return review, nil
}

// Delete removes the caller's review
func (s *Service) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if review.GuestID != userID {
		return ErrNotReviewOwner
	}

	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.refreshPropertyRating(ctx, review.PropertyID)
	return nil
}

// Summary builds the property's rating overview
func (s *Service) Summary(ctx context.Context, propertyID uuid.UUID) (*RatingSummary, error) {
	avg, err := s.repo.AverageRating(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get average: %w", err)
	}
	total, err := s.repo.CountByProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}
	dist, err := s.repo.RatingDistribution(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get distribution: %w", err)
	}
	recent, err := s.repo.ListByProperty(ctx, propertyID, 5, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	summary := &RatingSummary{
		AverageRating: math.Round(avg*10) / 10,
		TotalReviews:  total,
		Distribution:  dist,
	}
	for i := range recent {
		summary.RecentReviews = append(summary.RecentReviews, recent[i].ToResponse())
	}
	return summary, nil
}

// ListByProperty returns a page of public reviews
func (s *Service) ListByProperty(ctx context.Context, propertyID uuid.UUID, limit, offset int) ([]Review, int, error) {
	reviews, err := s.repo.ListByProperty(ctx, propertyID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountByProperty(ctx, propertyID)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// refreshPropertyRating recomputes the denormalized rating on the listing
func (s *Service) refreshPropertyRating(ctx context.Context, propertyID uuid.UUID) {
	avg, err := s.repo.AverageRating(ctx, propertyID)
	if err != nil {
		log.Warn().Err(err).Str("property_id", propertyID.String()).Msg("failed to compute rating")
		return
	}
	count, err := s.repo.CountByProperty(ctx, propertyID)
	if err != nil {
		log.Warn().Err(err).Str("property_id", propertyID.String()).Msg("failed to count reviews")
		return
	}
	if err := s.propertyRepo.UpdateRating(ctx, propertyID, math.Round(avg*10)/10, count); err != nil {
		log.Warn().Err(err).Str("property_id", propertyID.String()).Msg("failed to update property rating")
	}
}
