package booking_test

import (
	"testing"
	"time"

	"github.com/krib/krib-api/internal/domain/booking"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalcNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{
			name:     "exact three nights",
			checkIn:  date(2027, time.January, 10),
			checkOut: date(2027, time.January, 13),
			want:     3,
		},
		{
			name:     "one night",
			checkIn:  date(2027, time.January, 10),
			checkOut: date(2027, time.January, 11),
			want:     1,
		},
		{
			name:     "fractional day rounds up",
			checkIn:  time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
			checkOut: time.Date(2027, time.January, 2, 12, 0, 0, 0, time.UTC),
			want:     2,
		},
		{
			name:     "one hour rounds up to one night",
			checkIn:  time.Date(2027, time.January, 1, 10, 0, 0, 0, time.UTC),
			checkOut: time.Date(2027, time.January, 1, 11, 0, 0, 0, time.UTC),
			want:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := booking.CalcNights(tt.checkIn, tt.checkOut)
			if got != tt.want {
				t.Fatalf("expected %d nights, got %d", tt.want, got)
			}
		})
	}
}

func TestComputeQuote(t *testing.T) {
	// basePrice=500, cleaningFee=100, 3 nights:
	// base=1500, service=round(225)=225, total=1825
	q := booking.ComputeQuote(
		date(2027, time.January, 10),
		date(2027, time.January, 13),
		500, 100, 0.15, "AED",
	)

	if q.Nights != 3 {
		t.Fatalf("expected 3 nights, got %d", q.Nights)
	}
	if q.BaseAmount != 1500 {
		t.Fatalf("expected base amount 1500, got %v", q.BaseAmount)
	}
	if q.ServiceFee != 225 {
		t.Fatalf("expected service fee 225, got %v", q.ServiceFee)
	}
	if q.TotalAmount != 1825 {
		t.Fatalf("expected total 1825, got %v", q.TotalAmount)
	}
	if q.Currency != "AED" {
		t.Fatalf("expected AED, got %s", q.Currency)
	}
}

func TestComputeQuote_ServiceFeeRounding(t *testing.T) {
	// 1 night at 333: service = round(49.95) = 50
	q := booking.ComputeQuote(
		date(2027, time.March, 1),
		date(2027, time.March, 2),
		333, 0, 0.15, "AED",
	)
	if q.ServiceFee != 50 {
		t.Fatalf("expected service fee 50, got %v", q.ServiceFee)
	}
	if q.TotalAmount != 383 {
		t.Fatalf("expected total 383, got %v", q.TotalAmount)
	}
}

func TestComputeQuote_HalfRoundsAwayFromZero(t *testing.T) {
	// 1 night at 210: service = round(31.5) = 32
	q := booking.ComputeQuote(
		date(2027, time.March, 1),
		date(2027, time.March, 2),
		210, 0, 0.15, "AED",
	)
	if q.ServiceFee != 32 {
		t.Fatalf("expected service fee 32, got %v", q.ServiceFee)
	}
}
