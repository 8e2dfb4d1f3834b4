package lease

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/krib/krib-api/internal/domain/property"
)

// PropertyStore is the slice of the property repository the lease
// service needs.
type PropertyStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error)
}

// Notifier delivers in-app notifications for lease status changes.
type Notifier interface {
	NotifyLeaseUpdate(ctx context.Context, userID uuid.UUID, propertyTitle, status string, leaseID, propertyID uuid.UUID)
}

// Service handles lease application logic
type Service struct {
	repo         Repository
	propertyRepo PropertyStore
	notifier     Notifier
	currency     string
	now          func() time.Time
}

// NewService creates lease service
func NewService(repo Repository, propertyRepo PropertyStore, currency string) *Service {
	return &Service{
		repo:         repo,
		propertyRepo: propertyRepo,
		currency:     currency,
		now:          time.Now,
	}
}

// SetNotifier attaches the notification sink
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// ApplyInput is a validated lease application
type ApplyInput struct {
	PropertyID  uuid.UUID
	ApplicantID uuid.UUID
	MoveIn      time.Time
	Months      int
	MonthlyRent float64
	Message     string
}

// Apply submits a lease application against a long-term listing
func (s *Service) Apply(ctx context.Context, in *ApplyInput) (*Lease, error) {
	if in.Months < 1 {
		return nil, ErrInvalidTerm
	}
	if !in.MoveIn.After(s.now()) {
		return nil, ErrMoveInNotFuture
	}

	prop, err := s.propertyRepo.GetByID(ctx, in.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	if prop == nil || !prop.IsActive {
		return nil, ErrPropertyUnavailable
	}
	if prop.RentalKind != property.RentalLongTerm {
		return nil, ErrNotLongTermRental
	}

	open, err := s.repo.HasOpenApplication(ctx, in.ApplicantID, in.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open applications: %w", err)
	}
	if open {
		return nil, ErrDuplicateOpen
	}

	now := s.now()
	l := &Lease{
		ID:          uuid.New(),
		PropertyID:  in.PropertyID,
		ApplicantID: in.ApplicantID,
		MoveIn:      in.MoveIn,
		Months:      in.Months,
		MonthlyRent: in.MonthlyRent,
		AnnualRent:  in.MonthlyRent * 12,
		TotalAmount: in.MonthlyRent * float64(in.Months),
		Currency:    s.currency,
		Status:      StatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Message != "" {
		l.Message = sql.NullString{String: in.Message, Valid: true}
	}

	if err := s.repo.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create lease application: %w", err)
	}

	log.Info().
		Str("lease_id", l.ID.String()).
		Str("property_id", l.PropertyID.String()).
		Str("applicant_id", l.ApplicantID.String()).
		Int("months", l.Months).
		Float64("monthly_rent", l.MonthlyRent).
		Msg("lease application submitted")

	if s.notifier != nil {
		s.notifier.NotifyLeaseUpdate(ctx, prop.HostID, prop.Title, string(StatusSubmitted), l.ID, l.PropertyID)
	}

	l.PropertyTitle = prop.Title
	l.HostID = prop.HostID
	return l, nil
}

// Review advances an application through the state machine. Only the
// property's host/agent may decide.
func (s *Service) Review(ctx context.Context, hostID, leaseID uuid.UUID, next Status) (*Lease, error) {
	l, err := s.repo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	if l == nil {
		return nil, ErrLeaseNotFound
	}
	if l.HostID != hostID {
		return nil, ErrAccessDenied
	}
	if !l.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	if err := s.repo.UpdateStatus(ctx, leaseID, next, s.now()); err != nil {
		return nil, fmt.Errorf("failed to update lease status: %w", err)
	}
	l.Status = next

	if s.notifier != nil {
		s.notifier.NotifyLeaseUpdate(ctx, l.ApplicantID, l.PropertyTitle, string(next), l.ID, l.PropertyID)
	}
	return l, nil
}

// GetByID returns a lease visible to its applicant or the property host
func (s *Service) GetByID(ctx context.Context, userID, leaseID uuid.UUID) (*Lease, error) {
	l, err := s.repo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lease: %w", err)
	}
	if l == nil {
		return nil, ErrLeaseNotFound
	}
	if l.ApplicantID != userID && l.HostID != userID {
		return nil, ErrAccessDenied
	}
	return l, nil
}

// ListMine returns the caller's applications
func (s *Service) ListMine(ctx context.Context, applicantID uuid.UUID, limit, offset int) ([]*Lease, int, error) {
	return s.repo.ListByApplicant(ctx, applicantID, limit, offset)
}

// ListForHost returns applications against the caller's listings
func (s *Service) ListForHost(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*Lease, int, error) {
	return s.repo.ListByHost(ctx, hostID, limit, offset)
}
