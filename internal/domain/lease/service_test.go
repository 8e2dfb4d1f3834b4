package lease_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/krib/krib-api/internal/domain/lease"
	"github.com/krib/krib-api/internal/domain/property"
)

/* =========================
   Fakes
   ========================= */

// fakeLeaseRepo mimics the SQL repository, including the property join
// that fills PropertyTitle and HostID on reads.
type fakeLeaseRepo struct {
	leases map[uuid.UUID]*lease.Lease
	props  map[uuid.UUID]*property.Property
}

func (f *fakeLeaseRepo) Create(ctx context.Context, l *lease.Lease) error {
	cp := *l
	f.leases[l.ID] = &cp
	return nil
}

func (f *fakeLeaseRepo) joined(l *lease.Lease) *lease.Lease {
	cp := *l
	if p, ok := f.props[l.PropertyID]; ok {
		cp.PropertyTitle = p.Title
		cp.HostID = p.HostID
	}
	return &cp
}

func (f *fakeLeaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*lease.Lease, error) {
	l, ok := f.leases[id]
	if !ok {
		return nil, nil
	}
	return f.joined(l), nil
}

func (f *fakeLeaseRepo) ListByApplicant(ctx context.Context, applicantID uuid.UUID, limit, offset int) ([]*lease.Lease, int, error) {
	var out []*lease.Lease
	for _, l := range f.leases {
		if l.ApplicantID == applicantID {
			out = append(out, f.joined(l))
		}
	}
	return out, len(out), nil
}

func (f *fakeLeaseRepo) ListByHost(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*lease.Lease, int, error) {
	var out []*lease.Lease
	for _, l := range f.leases {
		if j := f.joined(l); j.HostID == hostID {
			out = append(out, j)
		}
	}
	return out, len(out), nil
}

func (f *fakeLeaseRepo) HasOpenApplication(ctx context.Context, applicantID, propertyID uuid.UUID) (bool, error) {
	for _, l := range f.leases {
		if l.ApplicantID == applicantID && l.PropertyID == propertyID && l.Status.IsOpen() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLeaseRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status lease.Status, decidedAt time.Time) error {
	l, ok := f.leases[id]
	if !ok {
		return errors.New("lease not found")
	}
	l.Status = status
	return nil
}

type fakeLeasePropertyStore struct {
	properties map[uuid.UUID]*property.Property
}

func (f *fakeLeasePropertyStore) GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	p, ok := f.properties[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

/* =========================
   Helpers
   ========================= */

func newLeaseTestService(props ...*property.Property) (*lease.Service, *fakeLeaseRepo) {
	byID := make(map[uuid.UUID]*property.Property)
	for _, p := range props {
		byID[p.ID] = p
	}
	repo := &fakeLeaseRepo{leases: make(map[uuid.UUID]*lease.Lease), props: byID}
	store := &fakeLeasePropertyStore{properties: byID}
	svc := lease.NewService(repo, store, "AED")
	return svc, repo
}

func longTermProperty(hostID uuid.UUID) *property.Property {
	return &property.Property{
		ID:         uuid.New(),
		HostID:     hostID,
		Title:      "Marina 2BR yearly",
		RentalKind: property.RentalLongTerm,
		IsActive:   true,
	}
}

func applyInput(propertyID, applicantID uuid.UUID) *lease.ApplyInput {
	return &lease.ApplyInput{
		PropertyID:  propertyID,
		ApplicantID: applicantID,
		MoveIn:      time.Now().AddDate(0, 1, 0),
		Months:      12,
		MonthlyRent: 7500,
	}
}

/* =========================
   Apply
   ========================= */

func TestApply_ComputesRentTotals(t *testing.T) {
	hostID := uuid.New()
	prop := longTermProperty(hostID)
	svc, _ := newLeaseTestService(prop)

	in := applyInput(prop.ID, uuid.New())
	in.Months = 6
	in.MonthlyRent = 8000

	l, err := svc.Apply(context.Background(), in)
	if err != nil {
		t.Fatalf("expected apply to succeed, got %v", err)
	}
	if l.Status != lease.StatusSubmitted {
		t.Fatalf("expected status %s, got %s", lease.StatusSubmitted, l.Status)
	}
	if l.AnnualRent != 96000 {
		t.Fatalf("expected annual rent 96000, got %v", l.AnnualRent)
	}
	if l.TotalAmount != 48000 {
		t.Fatalf("expected total amount 48000, got %v", l.TotalAmount)
	}
	if l.Currency != "AED" {
		t.Fatalf("expected currency AED, got %s", l.Currency)
	}
	if l.HostID != hostID {
		t.Fatalf("expected host %s, got %s", hostID, l.HostID)
	}
}

func TestApply_RejectsShortTermListing(t *testing.T) {
	prop := longTermProperty(uuid.New())
	prop.RentalKind = property.RentalShortTerm
	svc, _ := newLeaseTestService(prop)

	_, err := svc.Apply(context.Background(), applyInput(prop.ID, uuid.New()))
	if !errors.Is(err, lease.ErrNotLongTermRental) {
		t.Fatalf("expected ErrNotLongTermRental, got %v", err)
	}
}

func TestApply_RejectsInactiveListing(t *testing.T) {
	prop := longTermProperty(uuid.New())
	prop.IsActive = false
	svc, _ := newLeaseTestService(prop)

	_, err := svc.Apply(context.Background(), applyInput(prop.ID, uuid.New()))
	if !errors.Is(err, lease.ErrPropertyUnavailable) {
		t.Fatalf("expected ErrPropertyUnavailable, got %v", err)
	}
}

func TestApply_RejectsUnknownProperty(t *testing.T) {
	svc, _ := newLeaseTestService()

	_, err := svc.Apply(context.Background(), applyInput(uuid.New(), uuid.New()))
	if !errors.Is(err, lease.ErrPropertyUnavailable) {
		t.Fatalf("expected ErrPropertyUnavailable, got %v", err)
	}
}

func TestApply_RejectsPastMoveIn(t *testing.T) {
	prop := longTermProperty(uuid.New())
	svc, _ := newLeaseTestService(prop)

	in := applyInput(prop.ID, uuid.New())
	in.MoveIn = time.Now().AddDate(0, 0, -1)

	_, err := svc.Apply(context.Background(), in)
	if !errors.Is(err, lease.ErrMoveInNotFuture) {
		t.Fatalf("expected ErrMoveInNotFuture, got %v", err)
	}
}

func TestApply_RejectsZeroMonths(t *testing.T) {
	prop := longTermProperty(uuid.New())
	svc, _ := newLeaseTestService(prop)

	in := applyInput(prop.ID, uuid.New())
	in.Months = 0

	_, err := svc.Apply(context.Background(), in)
	if !errors.Is(err, lease.ErrInvalidTerm) {
		t.Fatalf("expected ErrInvalidTerm, got %v", err)
	}
}

func TestApply_RejectsDuplicateOpenApplication(t *testing.T) {
	prop := longTermProperty(uuid.New())
	svc, _ := newLeaseTestService(prop)
	applicantID := uuid.New()

	if _, err := svc.Apply(context.Background(), applyInput(prop.ID, applicantID)); err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	_, err := svc.Apply(context.Background(), applyInput(prop.ID, applicantID))
	if !errors.Is(err, lease.ErrDuplicateOpen) {
		t.Fatalf("expected ErrDuplicateOpen, got %v", err)
	}
}

func TestApply_AllowsReapplyAfterRejection(t *testing.T) {
	hostID := uuid.New()
	prop := longTermProperty(hostID)
	svc, _ := newLeaseTestService(prop)
	applicantID := uuid.New()

	first, err := svc.Apply(context.Background(), applyInput(prop.ID, applicantID))
	if err != nil {
		t.Fatalf("first apply failed: %v", err)
	}
	if _, err := svc.Review(context.Background(), hostID, first.ID, lease.StatusRejected); err != nil {
		t.Fatalf("reject failed: %v", err)
	}

	if _, err := svc.Apply(context.Background(), applyInput(prop.ID, applicantID)); err != nil {
		t.Fatalf("expected reapply after rejection to succeed, got %v", err)
	}
}

/* =========================
   Review
   ========================= */

func submitApplication(t *testing.T, svc *lease.Service, prop *property.Property) *lease.Lease {
	t.Helper()
	l, err := svc.Apply(context.Background(), applyInput(prop.ID, uuid.New()))
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	return l
}

func TestReview_WalksFullLifecycle(t *testing.T) {
	hostID := uuid.New()
	prop := longTermProperty(hostID)
	svc, _ := newLeaseTestService(prop)
	l := submitApplication(t, svc, prop)

	for _, next := range []lease.Status{
		lease.StatusUnderReview,
		lease.StatusApproved,
		lease.StatusActive,
		lease.StatusEnded,
	} {
		got, err := svc.Review(context.Background(), hostID, l.ID, next)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
		if got.Status != next {
			t.Fatalf("expected status %s, got %s", next, got.Status)
		}
	}
}

func TestReview_AllowsDirectApproval(t *testing.T) {
	hostID := uuid.New()
	prop := longTermProperty(hostID)
	svc, _ := newLeaseTestService(prop)
	l := submitApplication(t, svc, prop)

	got, err := svc.Review(context.Background(), hostID, l.ID, lease.StatusApproved)
	if err != nil {
		t.Fatalf("expected submitted -> approved to succeed, got %v", err)
	}
	if got.Status != lease.StatusApproved {
		t.Fatalf("expected status %s, got %s", lease.StatusApproved, got.Status)
	}
}

func TestReview_RejectsInvalidTransition(t *testing.T) {
	hostID := uuid.New()
	prop := longTermProperty(hostID)
	svc, _ := newLeaseTestService(prop)
	l := submitApplication(t, svc, prop)

	if _, err := svc.Review(context.Background(), hostID, l.ID, lease.StatusRejected); err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	_, err := svc.Review(context.Background(), hostID, l.ID, lease.StatusActive)
	if !errors.Is(err, lease.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReview_RejectsSkippingActivation(t *testing.T) {
	hostID := uuid.New()
	prop := longTermProperty(hostID)
	svc, _ := newLeaseTestService(prop)
	l := submitApplication(t, svc, prop)

	_, err := svc.Review(context.Background(), hostID, l.ID, lease.StatusActive)
	if !errors.Is(err, lease.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReview_DeniesNonHost(t *testing.T) {
	prop := longTermProperty(uuid.New())
	svc, _ := newLeaseTestService(prop)
	l := submitApplication(t, svc, prop)

	_, err := svc.Review(context.Background(), uuid.New(), l.ID, lease.StatusApproved)
	if !errors.Is(err, lease.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestReview_UnknownLease(t *testing.T) {
	svc, _ := newLeaseTestService()

	_, err := svc.Review(context.Background(), uuid.New(), uuid.New(), lease.StatusApproved)
	if !errors.Is(err, lease.ErrLeaseNotFound) {
		t.Fatalf("expected ErrLeaseNotFound, got %v", err)
	}
}

/* =========================
   Visibility
   ========================= */

func TestGetByID_VisibleToApplicantAndHost(t *testing.T) {
	hostID := uuid.New()
	prop := longTermProperty(hostID)
	svc, _ := newLeaseTestService(prop)
	l := submitApplication(t, svc, prop)

	if _, err := svc.GetByID(context.Background(), l.ApplicantID, l.ID); err != nil {
		t.Fatalf("applicant should see own lease, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), hostID, l.ID); err != nil {
		t.Fatalf("host should see lease against their listing, got %v", err)
	}
	_, err := svc.GetByID(context.Background(), uuid.New(), l.ID)
	if !errors.Is(err, lease.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied for stranger, got %v", err)
	}
}
