package booking_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/krib/krib-api/internal/domain/booking"
	"github.com/krib/krib-api/internal/domain/payment"
	"github.com/krib/krib-api/internal/domain/property"
)

/* =========================
   Fakes
   ========================= */

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*booking.Booking
	payments map[uuid.UUID][]*payment.Payment

	// afterConflictCheck runs after FindConflicts returns, standing in
	// for a concurrent writer committing between the service-level check
	// and the repository write.
	afterConflictCheck func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*booking.Booking),
		payments: make(map[uuid.UUID][]*payment.Payment),
	}
}

func (f *fakeBookingRepo) CreateWithPayments(ctx context.Context, b *booking.Booking, payments []*payment.Payment) error {
	for _, existing := range f.bookings {
		if existing.PropertyID != b.PropertyID {
			continue
		}
		if existing.Status != booking.StatusPending && existing.Status != booking.StatusConfirmed {
			continue
		}
		if existing.Overlaps(b.CheckIn, b.CheckOut) {
			return booking.ErrDatesUnavailable
		}
	}
	cp := *b
	f.bookings[b.ID] = &cp
	f.payments[b.ID] = payments
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) Update(ctx context.Context, b *booking.Booking) error {
	for _, existing := range f.bookings {
		if existing.PropertyID != b.PropertyID || existing.ID == b.ID {
			continue
		}
		if existing.Status != booking.StatusPending && existing.Status != booking.StatusConfirmed {
			continue
		}
		if existing.Overlaps(b.CheckIn, b.CheckOut) {
			return booking.ErrDatesUnavailable
		}
	}
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status booking.Status) error {
	f.bookings[id].Status = status
	return nil
}

func (f *fakeBookingRepo) CancelWithPayments(ctx context.Context, id uuid.UUID, reason string) error {
	b := f.bookings[id]
	b.Status = booking.StatusCancelled
	if reason != "" {
		b.CancelReason = sql.NullString{String: reason, Valid: true}
	}
	for _, p := range f.payments[id] {
		if p.Status == payment.StatusPending {
			p.Status = payment.StatusCancelled
		}
	}
	return nil
}

func (f *fakeBookingRepo) FindConflicts(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time, excludeID *uuid.UUID) ([]*booking.Booking, error) {
	var conflicts []*booking.Booking
	for _, b := range f.bookings {
		if b.PropertyID != propertyID {
			continue
		}
		if excludeID != nil && b.ID == *excludeID {
			continue
		}
		if b.Status != booking.StatusPending && b.Status != booking.StatusConfirmed {
			continue
		}
		if b.Overlaps(checkIn, checkOut) {
			conflicts = append(conflicts, b)
		}
	}
	if f.afterConflictCheck != nil {
		f.afterConflictCheck()
	}
	return conflicts, nil
}

func (f *fakeBookingRepo) ListByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]*booking.Booking, int, error) {
	var out []*booking.Booking
	for _, b := range f.bookings {
		if b.GuestID == guestID {
			out = append(out, b)
		}
	}
	return out, len(out), nil
}

func (f *fakeBookingRepo) ListByHost(ctx context.Context, hostID uuid.UUID, limit, offset int) ([]*booking.Booking, int, error) {
	return nil, 0, nil
}

func (f *fakeBookingRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*booking.Booking, error) {
	return nil, nil
}

type fakePropertyStore struct {
	properties map[uuid.UUID]*property.Property
}

func (f *fakePropertyStore) GetByID(ctx context.Context, id uuid.UUID) (*property.Property, error) {
	p, ok := f.properties[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

/* =========================
   Helpers
   ========================= */

var testConfig = booking.Config{
	ServiceFeeRate: 0.15,
	PaymentDue:     24 * time.Hour,
	Currency:       "AED",
}

func newTestProperty(hostID uuid.UUID) *property.Property {
	return &property.Property{
		ID:            uuid.New(),
		HostID:        hostID,
		Title:         "Marina view apartment",
		Type:          property.TypeApartment,
		RentalKind:    property.RentalShortTerm,
		Emirate:       "dubai",
		City:          "Dubai",
		Guests:        4,
		BasePrice:     500,
		CleaningFee:   sql.NullFloat64{Float64: 100, Valid: true},
		IsInstantBook: false,
		IsActive:      true,
	}
}

func newTestService(props ...*property.Property) (*booking.Service, *fakeBookingRepo) {
	repo := newFakeBookingRepo()
	store := &fakePropertyStore{properties: make(map[uuid.UUID]*property.Property)}
	for _, p := range props {
		store.properties[p.ID] = p
	}
	return booking.NewService(repo, store, testConfig), repo
}

func futureDate(days int) time.Time {
	return time.Now().AddDate(0, 0, days).Truncate(24 * time.Hour).Add(12 * time.Hour)
}

/* =========================
   Create: pricing
   ========================= */

func TestCreate_PricingBreakdown(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, repo := newTestService(prop)
	guestID := uuid.New()

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    guestID,
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Nights != 3 {
		t.Fatalf("expected 3 nights, got %d", b.Nights)
	}
	if b.BaseAmount != 1500 {
		t.Fatalf("expected base 1500, got %v", b.BaseAmount)
	}
	if b.CleaningFee != 100 {
		t.Fatalf("expected cleaning fee 100, got %v", b.CleaningFee)
	}
	if b.ServiceFee != 225 {
		t.Fatalf("expected service fee 225, got %v", b.ServiceFee)
	}
	if b.TotalAmount != 1825 {
		t.Fatalf("expected total 1825, got %v", b.TotalAmount)
	}
	if b.Status != booking.StatusPending {
		t.Fatalf("expected pending status, got %s", b.Status)
	}

	payments := repo.payments[b.ID]
	if len(payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(payments))
	}
	if payments[0].Type != payment.TypeBookingPayment {
		t.Fatalf("expected booking_payment, got %s", payments[0].Type)
	}
	if payments[0].Amount != 1825 {
		t.Fatalf("expected payment amount 1825, got %v", payments[0].Amount)
	}
}

func TestCreate_SecurityDepositPayment(t *testing.T) {
	prop := newTestProperty(uuid.New())
	prop.SecurityDeposit = sql.NullFloat64{Float64: 2000, Valid: true}
	svc, repo := newTestService(prop)

	checkIn := futureDate(10)
	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    checkIn,
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payments := repo.payments[b.ID]
	if len(payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(payments))
	}
	deposit := payments[1]
	if deposit.Type != payment.TypeSecurityDeposit {
		t.Fatalf("expected security_deposit, got %s", deposit.Type)
	}
	if deposit.Amount != 2000 {
		t.Fatalf("expected deposit 2000, got %v", deposit.Amount)
	}
	if !deposit.DueAt.Equal(checkIn) {
		t.Fatalf("expected deposit due at check-in %v, got %v", checkIn, deposit.DueAt)
	}
}

func TestCreate_InstantBookConfirms(t *testing.T) {
	prop := newTestProperty(uuid.New())
	prop.IsInstantBook = true
	svc, _ := newTestService(prop)

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(12),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Status != booking.StatusConfirmed {
		t.Fatalf("expected confirmed status, got %s", b.Status)
	}
}

/* =========================
   Create: validation order
   ========================= */

func TestCreate_ValidationFailures(t *testing.T) {
	prop := newTestProperty(uuid.New())
	inactive := newTestProperty(uuid.New())
	inactive.IsActive = false
	svc, _ := newTestService(prop, inactive)

	tests := []struct {
		name  string
		input booking.CreateInput
		want  error
	}{
		{
			name: "check-out before check-in",
			input: booking.CreateInput{
				PropertyID: prop.ID,
				CheckIn:    futureDate(13),
				CheckOut:   futureDate(10),
				Guests:     2,
			},
			want: booking.ErrCheckOutBeforeCheckIn,
		},
		{
			name: "equal dates rejected",
			input: booking.CreateInput{
				PropertyID: prop.ID,
				CheckIn:    futureDate(10),
				CheckOut:   futureDate(10),
				Guests:     2,
			},
			want: booking.ErrCheckOutBeforeCheckIn,
		},
		{
			name: "check-in in the past",
			input: booking.CreateInput{
				PropertyID: prop.ID,
				CheckIn:    time.Now().AddDate(0, 0, -1),
				CheckOut:   futureDate(5),
				Guests:     2,
			},
			want: booking.ErrCheckInNotFuture,
		},
		{
			name: "unknown property",
			input: booking.CreateInput{
				PropertyID: uuid.New(),
				CheckIn:    futureDate(10),
				CheckOut:   futureDate(13),
				Guests:     2,
			},
			want: booking.ErrPropertyUnavailable,
		},
		{
			name: "inactive property",
			input: booking.CreateInput{
				PropertyID: inactive.ID,
				CheckIn:    futureDate(10),
				CheckOut:   futureDate(13),
				Guests:     2,
			},
			want: booking.ErrPropertyUnavailable,
		},
		{
			name: "guest count over capacity",
			input: booking.CreateInput{
				PropertyID: prop.ID,
				CheckIn:    futureDate(10),
				CheckOut:   futureDate(13),
				Guests:     5,
			},
			want: booking.ErrGuestLimitExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			in.GuestID = uuid.New()
			_, err := svc.Create(context.Background(), &in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreate_DateOrderCheckedBeforeProperty(t *testing.T) {
	// Reversed dates on an unknown property must fail on the dates,
	// not the property lookup.
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: uuid.New(),
		GuestID:    uuid.New(),
		CheckIn:    futureDate(13),
		CheckOut:   futureDate(10),
		Guests:     2,
	})
	if !errors.Is(err, booking.ErrCheckOutBeforeCheckIn) {
		t.Fatalf("expected %v, got %v", booking.ErrCheckOutBeforeCheckIn, err)
	}
}

/* =========================
   Create: conflicts
   ========================= */

func TestCreate_OverlappingDatesRejected(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, _ := newTestService(prop)

	// A = [day 10, day 15)
	_, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(15),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// B = [day 12, day 20) overlaps A
	_, err = svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(12),
		CheckOut:   futureDate(20),
		Guests:     2,
	})
	if !errors.Is(err, booking.ErrDatesUnavailable) {
		t.Fatalf("expected %v, got %v", booking.ErrDatesUnavailable, err)
	}
}

func TestCreate_BackToBackStaysAllowed(t *testing.T) {
	// Half-open intervals: [10,15) and [15,20) do not overlap
	prop := newTestProperty(uuid.New())
	svc, _ := newTestService(prop)

	_, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(15),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(15),
		CheckOut:   futureDate(20),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("back-to-back stay should be allowed, got %v", err)
	}
}

func TestCreate_CancelledBookingDoesNotBlock(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, _ := newTestService(prop)
	guestID := uuid.New()

	a, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    guestID,
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(15),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Cancel(context.Background(), guestID, a.ID, "plans changed"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err = svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(12),
		CheckOut:   futureDate(20),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("cancelled booking must not block new dates, got %v", err)
	}
}

func TestCreate_ConfirmedBookingBlocks(t *testing.T) {
	prop := newTestProperty(uuid.New())
	prop.IsInstantBook = true
	svc, _ := newTestService(prop)

	_, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(15),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(14),
		CheckOut:   futureDate(16),
		Guests:     2,
	})
	if !errors.Is(err, booking.ErrDatesUnavailable) {
		t.Fatalf("expected %v, got %v", booking.ErrDatesUnavailable, err)
	}
}

/* =========================
   Cancellation
   ========================= */

func TestCancel_CascadesToPendingPayments(t *testing.T) {
	prop := newTestProperty(uuid.New())
	prop.SecurityDeposit = sql.NullFloat64{Float64: 1000, Valid: true}
	svc, repo := newTestService(prop)
	guestID := uuid.New()

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    guestID,
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Cancel(context.Background(), guestID, b.ID, "found another place"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), b.ID)
	if got.Status != booking.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", got.Status)
	}
	for _, p := range repo.payments[b.ID] {
		if p.Status != payment.StatusCancelled {
			t.Fatalf("expected payment cancelled, got %s", p.Status)
		}
	}
}

func TestCancel_TerminalStatesRejected(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, repo := newTestService(prop)
	guestID := uuid.New()

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    guestID,
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("already cancelled", func(t *testing.T) {
		if err := svc.Cancel(context.Background(), guestID, b.ID, ""); err != nil {
			t.Fatalf("first cancel failed: %v", err)
		}
		err := svc.Cancel(context.Background(), guestID, b.ID, "")
		if !errors.Is(err, booking.ErrAlreadyFinal) {
			t.Fatalf("expected %v, got %v", booking.ErrAlreadyFinal, err)
		}
	})

	t.Run("completed", func(t *testing.T) {
		repo.bookings[b.ID].Status = booking.StatusCompleted
		err := svc.Cancel(context.Background(), guestID, b.ID, "")
		if !errors.Is(err, booking.ErrAlreadyFinal) {
			t.Fatalf("expected %v, got %v", booking.ErrAlreadyFinal, err)
		}
	})
}

func TestCancel_HostCanReject(t *testing.T) {
	hostID := uuid.New()
	prop := newTestProperty(hostID)
	svc, repo := newTestService(prop)

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Cancel(context.Background(), hostID, b.ID, "dates no longer offered"); err != nil {
		t.Fatalf("host cancel failed: %v", err)
	}
	got, _ := repo.GetByID(context.Background(), b.ID)
	if got.Status != booking.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", got.Status)
	}
}

func TestCancel_StrangerDenied(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, _ := newTestService(prop)

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = svc.Cancel(context.Background(), uuid.New(), b.ID, "")
	if !errors.Is(err, booking.ErrAccessDenied) {
		t.Fatalf("expected %v, got %v", booking.ErrAccessDenied, err)
	}
}

/* =========================
   Status transitions
   ========================= */

func TestChangeStatus_Transitions(t *testing.T) {
	hostID := uuid.New()
	prop := newTestProperty(hostID)
	svc, _ := newTestService(prop)

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("pending cannot complete", func(t *testing.T) {
		_, err := svc.ChangeStatus(context.Background(), hostID, b.ID, booking.StatusCompleted)
		if !errors.Is(err, booking.ErrInvalidTransition) {
			t.Fatalf("expected %v, got %v", booking.ErrInvalidTransition, err)
		}
	})

	t.Run("pending confirms", func(t *testing.T) {
		got, err := svc.ChangeStatus(context.Background(), hostID, b.ID, booking.StatusConfirmed)
		if err != nil {
			t.Fatalf("confirm failed: %v", err)
		}
		if got.Status != booking.StatusConfirmed {
			t.Fatalf("expected confirmed, got %s", got.Status)
		}
	})

	t.Run("confirmed completes", func(t *testing.T) {
		got, err := svc.ChangeStatus(context.Background(), hostID, b.ID, booking.StatusCompleted)
		if err != nil {
			t.Fatalf("complete failed: %v", err)
		}
		if got.Status != booking.StatusCompleted {
			t.Fatalf("expected completed, got %s", got.Status)
		}
	})

	t.Run("completed is terminal", func(t *testing.T) {
		_, err := svc.ChangeStatus(context.Background(), hostID, b.ID, booking.StatusConfirmed)
		if !errors.Is(err, booking.ErrInvalidTransition) {
			t.Fatalf("expected %v, got %v", booking.ErrInvalidTransition, err)
		}
	})

	t.Run("non-host denied", func(t *testing.T) {
		_, err := svc.ChangeStatus(context.Background(), uuid.New(), b.ID, booking.StatusConfirmed)
		if !errors.Is(err, booking.ErrAccessDenied) {
			t.Fatalf("expected %v, got %v", booking.ErrAccessDenied, err)
		}
	})
}

/* =========================
   Update path
   ========================= */

func TestUpdate_RepricesFromPropertyRate(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, _ := newTestService(prop)
	guestID := uuid.New()

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    guestID,
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Stretch the stay to 5 nights: base=2500, service=round(375)=375,
	// total=2500+100+375=2975, priced off the property's nightly rate.
	newOut := futureDate(15)
	updated, err := svc.Update(context.Background(), guestID, b.ID, &booking.UpdateInput{
		CheckOut: &newOut,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Nights != 5 {
		t.Fatalf("expected 5 nights, got %d", updated.Nights)
	}
	if updated.BaseAmount != 2500 {
		t.Fatalf("expected base 2500, got %v", updated.BaseAmount)
	}
	if updated.ServiceFee != 375 {
		t.Fatalf("expected service fee 375, got %v", updated.ServiceFee)
	}
	if updated.TotalAmount != 2975 {
		t.Fatalf("expected total 2975, got %v", updated.TotalAmount)
	}
}

func TestUpdate_CapacityCheckedAgainstProperty(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, _ := newTestService(prop)
	guestID := uuid.New()

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    guestID,
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	over := prop.Guests + 1
	_, err = svc.Update(context.Background(), guestID, b.ID, &booking.UpdateInput{
		Guests: &over,
	})
	if !errors.Is(err, booking.ErrGuestLimitExceeded) {
		t.Fatalf("expected %v, got %v", booking.ErrGuestLimitExceeded, err)
	}
}

func TestUpdate_OwnBookingExcludedFromConflicts(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, _ := newTestService(prop)
	guestID := uuid.New()

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    guestID,
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shifting within the booking's own range must not self-conflict
	newIn := futureDate(11)
	newOut := futureDate(14)
	_, err = svc.Update(context.Background(), guestID, b.ID, &booking.UpdateInput{
		CheckIn:  &newIn,
		CheckOut: &newOut,
	})
	if err != nil {
		t.Fatalf("shifting own booking failed: %v", err)
	}
}

func TestUpdate_DateChangeRacingCreateRejected(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, repo := newTestService(prop)
	guestID := uuid.New()

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    guestID,
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A competing booking commits for the target dates right after the
	// update's availability check. The repository-level recheck must
	// refuse the write instead of committing the overlap.
	repo.afterConflictCheck = func() {
		repo.afterConflictCheck = nil
		rival := &booking.Booking{
			ID:         uuid.New(),
			PropertyID: prop.ID,
			GuestID:    uuid.New(),
			CheckIn:    futureDate(20),
			CheckOut:   futureDate(23),
			Status:     booking.StatusConfirmed,
		}
		repo.bookings[rival.ID] = rival
	}

	newIn := futureDate(20)
	newOut := futureDate(23)
	_, err = svc.Update(context.Background(), guestID, b.ID, &booking.UpdateInput{
		CheckIn:  &newIn,
		CheckOut: &newOut,
	})
	if !errors.Is(err, booking.ErrDatesUnavailable) {
		t.Fatalf("expected %v, got %v", booking.ErrDatesUnavailable, err)
	}

	stored, err := repo.GetByID(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !stored.CheckIn.Equal(b.CheckIn) || !stored.CheckOut.Equal(b.CheckOut) {
		t.Fatalf("expected booking dates untouched, got %v-%v", stored.CheckIn, stored.CheckOut)
	}
}

func TestUpdate_TerminalBookingRejected(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, _ := newTestService(prop)
	guestID := uuid.New()

	b, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    guestID,
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(13),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Cancel(context.Background(), guestID, b.ID, ""); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	three := 3
	_, err = svc.Update(context.Background(), guestID, b.ID, &booking.UpdateInput{Guests: &three})
	if !errors.Is(err, booking.ErrAlreadyFinal) {
		t.Fatalf("expected %v, got %v", booking.ErrAlreadyFinal, err)
	}
}

/* =========================
   Availability
   ========================= */

func TestAvailability(t *testing.T) {
	prop := newTestProperty(uuid.New())
	svc, _ := newTestService(prop)

	_, err := svc.Create(context.Background(), &booking.CreateInput{
		PropertyID: prop.ID,
		GuestID:    uuid.New(),
		CheckIn:    futureDate(10),
		CheckOut:   futureDate(15),
		Guests:     2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("overlap reported", func(t *testing.T) {
		available, conflicts, err := svc.Availability(context.Background(), prop.ID, futureDate(12), futureDate(20))
		if err != nil {
			t.Fatalf("availability failed: %v", err)
		}
		if available {
			t.Fatal("expected unavailable")
		}
		if len(conflicts) != 1 {
			t.Fatalf("expected 1 conflict, got %d", len(conflicts))
		}
	})

	t.Run("free range available", func(t *testing.T) {
		available, conflicts, err := svc.Availability(context.Background(), prop.ID, futureDate(20), futureDate(25))
		if err != nil {
			t.Fatalf("availability failed: %v", err)
		}
		if !available {
			t.Fatal("expected available")
		}
		if len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %d", len(conflicts))
		}
	})

	t.Run("reversed dates rejected", func(t *testing.T) {
		_, _, err := svc.Availability(context.Background(), prop.ID, futureDate(25), futureDate(20))
		if !errors.Is(err, booking.ErrCheckOutBeforeCheckIn) {
			t.Fatalf("expected %v, got %v", booking.ErrCheckOutBeforeCheckIn, err)
		}
	})
}
