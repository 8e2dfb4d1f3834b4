package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/krib/krib-api/internal/domain/payment"
	"github.com/krib/krib-api/internal/domain/property"
)

// Config holds pricing and payment scheduling parameters
type Config struct {
	ServiceFeeRate float64
	PaymentDue     time.Duration
	Currency       string
}

// PropertyStore is the slice of the property repository the booking
// service needs.
type PropertyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// Notifier delivers in-app notifications for booking lifecycle events.
type Notifier interface {
	NotifyBookingCreated(ctx context.Context, hostID uuid.UUID, propertyTitle string, bookingID, propertyID uuid.UUID)
	NotifyBookingConfirmed(ctx context.Context, guestID uuid.UUID, propertyTitle string, bookingID, propertyID uuid.UUID)
	NotifyBookingCancelled(ctx context.Context, userID uuid.UUID, propertyTitle string, bookingID, propertyID uuid.UUID)
}

// Service handles booking business logic
type Service struct {
	repo         Repository
	propertyRepo PropertyStore
	notifier     Notifier
	cfg          Config
	now          func() time.Time
}

// NewService creates booking service
func NewService(repo Repository, propertyRepo PropertyStore, cfg Config) *Service {
	return &Service{
		repo:         repo,
		propertyRepo: propertyRepo,
		cfg:          cfg,
		now:          time.Now,
	}
}

// SetNotifier attaches the notification sink. Without one, lifecycle
// events are simply not announced.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// CreateInput is a validated booking request
type CreateInput struct {
	PropertyID      uuid.UUID
	GuestID         uuid.UUID
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	Message         string
	SpecialRequests string
}

// Create validates a candidate booking, prices it and persists it together
// with its payment rows. Validation failures are returned in a fixed order
// so callers always see the most fundamental problem first.
func (s *Service) Create(ctx context.Context, in *CreateInput) (*Booking, error) {
	if !in.CheckIn.Before(in.CheckOut) {
		return nil, ErrCheckOutBeforeCheckIn
	}
	if !in.CheckIn.After(s.now()) {
		return nil, ErrCheckInNotFuture
	}

	prop, err := s.propertyRepo.GetByID(ctx, in.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if prop == nil || !prop.IsActive {
		return nil, ErrPropertyUnavailable
	}
	if prop.RentalKind != property.RentalShortTerm {
		return nil, ErrNotShortTermRental
	}
	if in.Guests > prop.Guests {
		return nil, ErrGuestLimitExceeded
	}

	conflicts, err := s.repo.FindConflicts(ctx, in.PropertyID, in.CheckIn, in.CheckOut, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if len(conflicts) > 0 {
		return nil, ErrDatesUnavailable
	}

	quote := ComputeQuote(in.CheckIn, in.CheckOut, prop.BasePrice, prop.EffectiveCleaningFee(), s.cfg.ServiceFeeRate, s.cfg.Currency)

	status := StatusPending
	if prop.IsInstantBook {
		status = StatusConfirmed
	}

	now := s.now()
	b := &Booking{
		ID:          uuid.New(),
		PropertyID:  in.PropertyID,
		GuestID:     in.GuestID,
		CheckIn:     in.CheckIn,
		CheckOut:    in.CheckOut,
		Guests:      in.Guests,
		Nights:      quote.Nights,
		BaseAmount:  quote.BaseAmount,
		CleaningFee: quote.CleaningFee,
		ServiceFee:  quote.ServiceFee,
		TotalAmount: quote.TotalAmount,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Message != "" {
		b.Message = sql.NullString{String: in.Message, Valid: true}
	}
	if in.SpecialRequests != "" {
		b.SpecialRequests = sql.NullString{String: in.SpecialRequests, Valid: true}
	}

	payments := []*payment.Payment{{
		ID:        uuid.New(),
		BookingID: b.ID,
		UserID:    in.GuestID,
		Type:      payment.TypeBookingPayment,
		Status:    payment.StatusPending,
		Amount:    quote.TotalAmount,
		Currency:  s.cfg.Currency,
		DueAt:     now.Add(s.cfg.PaymentDue),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	if deposit := prop.EffectiveSecurityDeposit(); deposit > 0 {
		payments = append(payments, &payment.Payment{
			ID:        uuid.New(),
			BookingID: b.ID,
			UserID:    in.GuestID,
			Type:      payment.TypeSecurityDeposit,
			Status:    payment.StatusPending,
			Amount:    deposit,
			Currency:  s.cfg.Currency,
			DueAt:     in.CheckIn,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if err := s.repo.CreateWithPayments(ctx, b, payments); err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", b.ID.String()).
		Str("property_id", b.PropertyID.String()).
		Str("guest_id", b.GuestID.String()).
		Int("nights", b.Nights).
		Float64("total", b.TotalAmount).
		Str("status", string(b.Status)).
		Msg("booking created")

	if s.notifier != nil {
		s.notifier.NotifyBookingCreated(ctx, prop.HostID, prop.Title, b.ID, b.PropertyID)
		if b.Status == StatusConfirmed {
			s.notifier.NotifyBookingConfirmed(ctx, b.GuestID, prop.Title, b.ID, b.PropertyID)
		}
	}

	b.PropertyTitle = prop.Title
	b.HostID = prop.HostID
	return b, nil
}

// UpdateInput carries the mutable booking fields
type UpdateInput struct {
	CheckIn         *time.Time
	CheckOut        *time.Time
	Guests          *int
	SpecialRequests *string
}

// Update changes dates or guest count on a live booking and reprices the
// stay from the property's canonical nightly rate and capacity.
func (s *Service) Update(ctx context.Context, userID, bookingID uuid.UUID, in *UpdateInput) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.GuestID != userID {
		return nil, ErrAccessDenied
	}
	if b.Status.IsTerminal() {
		return nil, ErrAlreadyFinal
	}

	checkIn := b.CheckIn
	checkOut := b.CheckOut
	guests := b.Guests
	if in.CheckIn != nil {
		checkIn = *in.CheckIn
	}
	if in.CheckOut != nil {
		checkOut = *in.CheckOut
	}
	if in.Guests != nil {
		guests = *in.Guests
	}

	datesChanged := !checkIn.Equal(b.CheckIn) || !checkOut.Equal(b.CheckOut)

	if datesChanged || guests != b.Guests {
		if !checkIn.Before(checkOut) {
			return nil, ErrCheckOutBeforeCheckIn
		}
		if datesChanged && !checkIn.After(s.now()) {
			return nil, ErrCheckInNotFuture
		}

		prop, err := s.propertyRepo.GetByID(ctx, b.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("failed to get property: %w", err)
		}
		if prop == nil || !prop.IsActive {
			return nil, ErrPropertyUnavailable
		}
		if guests > prop.Guests {
			return nil, ErrGuestLimitExceeded
		}

		if datesChanged {
			conflicts, err := s.repo.FindConflicts(ctx, b.PropertyID, checkIn, checkOut, &b.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check availability: %w", err)
			}
			if len(conflicts) > 0 {
				return nil, ErrDatesUnavailable
			}
		}

		quote := ComputeQuote(checkIn, checkOut, prop.BasePrice, prop.EffectiveCleaningFee(), s.cfg.ServiceFeeRate, s.cfg.Currency)
		b.CheckIn = checkIn
		b.CheckOut = checkOut
		b.Guests = guests
		b.Nights = quote.Nights
		b.BaseAmount = quote.BaseAmount
		b.CleaningFee = quote.CleaningFee
		b.ServiceFee = quote.ServiceFee
		b.TotalAmount = quote.TotalAmount
	}

	if in.SpecialRequests != nil {
		b.SpecialRequests = sql.NullString{String: *in.SpecialRequests, Valid: *in.SpecialRequests != ""}
	}

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel performs the cancellation transition, cascading to pending
// payments. Guests cancel their own bookings; the property's host may
// reject a request the same way.
func (s *Service) Cancel(ctx context.Context, userID, bookingID uuid.UUID, reason string) error {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}
	if b == nil {
		return ErrBookingNotFound
	}

	prop, err := s.propertyRepo.GetByID(ctx, b.PropertyID)
	if err != nil {
		return fmt.Errorf("failed to get property: %w", err)
	}
	if b.GuestID != userID {
		if prop == nil || prop.HostID != userID {
			return ErrAccessDenied
		}
	}

	if !b.CanBeCancelled() {
		return ErrAlreadyFinal
	}

	if err := s.repo.CancelWithPayments(ctx, bookingID, reason); err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}

	if s.notifier != nil && prop != nil {
		recipient := prop.HostID
		if userID != b.GuestID {
			recipient = b.GuestID
		}
		s.notifier.NotifyBookingCancelled(ctx, recipient, prop.Title, bookingID, b.PropertyID)
	}

	log.Info().
		Str("booking_id", bookingID.String()).
		Str("user_id", userID.String()).
		Msg("booking cancelled")
	return nil
}

// ChangeStatus applies a host-side state machine transition
// (confirm a pending request, complete a confirmed stay).
func (s *Service) ChangeStatus(ctx context.Context, userID, bookingID uuid.UUID, next Status) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}

	prop, err := s.propertyRepo.GetByID(ctx, b.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if prop == nil || prop.HostID != userID {
		return nil, ErrAccessDenied
	}

	if next == StatusCancelled {
		return nil, ErrInvalidTransition
	}
	if !b.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, next); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	b.Status = next

	if s.notifier != nil && next == StatusConfirmed {
		s.notifier.NotifyBookingConfirmed(ctx, b.GuestID, prop.Title, b.ID, b.PropertyID)
	}
	return b, nil
}

// GetByID returns a booking visible to the caller (guest or host)
func (s *Service) GetByID(ctx context.Context, userID, bookingID uuid.UUID) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if b == nil {
		return nil, ErrBookingNotFound
	}
	if b.GuestID != userID {
		prop, err := s.propertyRepo.GetByID(ctx, b.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("failed to get property: %w", err)
		}
		if prop == nil || prop.HostID != userID {
			return nil, ErrAccessDenied
		}
	}
	return b, nil
}

// ListMine returns the calling guest's bookings
func (s *Service) ListMine(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	return s.repo.ListByGuest(ctx, guestID, limit, offset)
}

// ListForHost returns bookings across the host's listings
func (s *Service) ListForHost(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	return s.repo.ListByHost(ctx, hostID, limit, offset)
}

// Availability reports whether [checkIn, checkOut) is free on a property
// and which bookings block it.
func (s *Service) Availability(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) (bool, []*Booking, error) {
	if !checkIn.Before(checkOut) {
		return false, nil, ErrCheckOutBeforeCheckIn
	}

	prop, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return false, nil, fmt.Errorf("failed to get property: %w", err)
	}
	if prop == nil || !prop.IsActive {
		return false, nil, ErrPropertyUnavailable
	}

	conflicts, err := s.repo.FindConflicts(ctx, propertyID, checkIn, checkOut, nil)
	if err != nil {
		return false, nil, fmt.Errorf("failed to check availability: %w", err)
	}
	return len(conflicts) == 0, conflicts, nil
}
