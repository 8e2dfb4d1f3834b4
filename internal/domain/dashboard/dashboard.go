package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UpcomingCheckIn is one arriving stay on the host dashboard
type UpcomingCheckIn struct {
	BookingID     uuid.UUID `db:"booking_id" json:"booking_id"`
	PropertyTitle string    `db:"property_title" json:"property_title"`
	GuestName     string    `db:"guest_name" json:"guest_name"`
	CheckIn       string    `db:"check_in" json:"check_in"`
	Nights        int       `db:"nights" json:"nights"`
	Guests        int       `db:"guests" json:"guests"`
}

// HostStats represents aggregated stats for the host dashboard
type HostStats struct {
	ActiveListings int `json:"active_listings"`

	PendingBookings   int `json:"pending_bookings"`
	ConfirmedBookings int `json:"confirmed_bookings"`
	CompletedBookings int `json:"completed_bookings"`
	CancelledBookings int `json:"cancelled_bookings"`

	// Occupancy of short-term listings over the trailing window
	OccupancyRate float64 `json:"occupancy_rate"`
	WindowDays    int     `json:"window_days"`

	TotalRevenue     float64 `json:"total_revenue"`
	RevenueThisMonth float64 `json:"revenue_this_month"`
	Currency         string  `json:"currency"`

	UpcomingCheckIns []UpcomingCheckIn `json:"upcoming_check_ins"`
}

// Repository handles host dashboard aggregation
type Repository struct {
	db       *sqlx.DB
	currency string
}

// NewRepository creates dashboard repository
func NewRepository(db *sqlx.DB, currency string) *Repository {
	return &Repository{db: db, currency: currency}
}

// GetHostStats returns aggregated stats for a host over the trailing window
func (r *Repository) GetHostStats(ctx context.Context, hostID uuid.UUID, windowDays int) (*HostStats, error) {
	stats := &HostStats{
		WindowDays:       windowDays,
		Currency:         r.currency,
		UpcomingCheckIns: []UpcomingCheckIn{},
	}

	_ = r.db.GetContext(ctx, &stats.ActiveListings, `
		SELECT COUNT(*) FROM properties
		WHERE host_id = $1 AND deleted_at IS NULL AND is_active = true
	`, hostID)

	countByStatus := func(dst *int, status string) {
		_ = r.db.GetContext(ctx, dst, `
			SELECT COUNT(*)
			FROM bookings b
			JOIN properties p ON p.id = b.property_id
			WHERE p.host_id = $1 AND b.status = $2
		`, hostID, status)
	}
	countByStatus(&stats.PendingBookings, "pending")
	countByStatus(&stats.ConfirmedBookings, "confirmed")
	countByStatus(&stats.CompletedBookings, "completed")
	countByStatus(&stats.CancelledBookings, "cancelled")

	_ = r.db.GetContext(ctx, &stats.TotalRevenue, `
		SELECT COALESCE(SUM(pay.amount), 0)
		FROM payments pay
		JOIN bookings b ON b.id = pay.booking_id
		JOIN properties p ON p.id = b.property_id
		WHERE p.host_id = $1 AND pay.status = 'paid'
	`, hostID)
	_ = r.db.GetContext(ctx, &stats.RevenueThisMonth, `
		SELECT COALESCE(SUM(pay.amount), 0)
		FROM payments pay
		JOIN bookings b ON b.id = pay.booking_id
		JOIN properties p ON p.id = b.property_id
		WHERE p.host_id = $1 AND pay.status = 'paid'
		  AND pay.paid_at >= DATE_TRUNC('month', CURRENT_DATE)
	`, hostID)

	stats.OccupancyRate = r.occupancyRate(ctx, hostID, windowDays)

	_ = r.db.SelectContext(ctx, &stats.UpcomingCheckIns, `
		SELECT b.id AS booking_id,
		       p.title AS property_title,
		       TRIM(u.first_name || ' ' || u.last_name) AS guest_name,
		       TO_CHAR(b.check_in, 'YYYY-MM-DD') AS check_in,
		       b.nights, b.guests
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		JOIN users u ON u.id = b.guest_id
		WHERE p.host_id = $1 AND b.status = 'confirmed'
		  AND b.check_in >= NOW() AND b.check_in < NOW() + INTERVAL '7 days'
		ORDER BY b.check_in
	`, hostID)

	return stats, nil
}

// occupancyRate is booked nights over available nights for the host's
// short-term listings in the trailing window, clipped to the window.
func (r *Repository) occupancyRate(ctx context.Context, hostID uuid.UUID, windowDays int) float64 {
	var listings int
	_ = r.db.GetContext(ctx, &listings, `
		SELECT COUNT(*) FROM properties
		WHERE host_id = $1 AND deleted_at IS NULL AND is_active = true
		  AND rental_kind = 'short_term'
	`, hostID)
	if listings == 0 || windowDays <= 0 {
		return 0
	}

	windowStart := time.Now().AddDate(0, 0, -windowDays)
	windowEnd := time.Now()

	var bookedNights float64
	_ = r.db.GetContext(ctx, &bookedNights, `
		SELECT COALESCE(SUM(
			EXTRACT(EPOCH FROM (LEAST(b.check_out, $3) - GREATEST(b.check_in, $2))) / 86400
		), 0)
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		WHERE p.host_id = $1
		  AND b.status IN ('confirmed', 'completed')
		  AND b.check_out > $2 AND b.check_in < $3
	`, hostID, windowStart, windowEnd)

	rate := bookedNights / (float64(listings) * float64(windowDays))
	if rate > 1 {
		rate = 1
	}
	return math.Round(rate*1000) / 1000
}
