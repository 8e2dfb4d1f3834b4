package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service handles payment business logic
type Service struct {
	repo Repository
}

// NewService creates payment service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetByID returns a payment visible to the calling user
func (s *Service) GetByID(ctx context.Context, userID uuid.UUID, isAdmin bool, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	if !isAdmin && p.UserID != userID {
		return nil, ErrAccessDenied
	}
	return p, nil
}

// ListMine returns the calling user's payments
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListByBooking returns payments for a booking
func (s *Service) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*Payment, error) {
	return s.repo.ListByBooking(ctx, bookingID)
}

// MarkPaid settles a pending payment
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	if !p.CanBePaid() {
		return nil, ErrNotPayable
	}

	if err := s.repo.MarkPaid(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to mark payment paid: %w", err)
	}

	log.Info().
		Str("payment_id", id.String()).
		Str("booking_id", p.BookingID.String()).
		Float64("amount", p.Amount).
		Msg("payment settled")

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload payment: %w", err)
	}
	return updated, nil
}
