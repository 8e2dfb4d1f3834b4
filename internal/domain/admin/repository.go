package admin

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// MonthRevenue is one month of paid payment volume
type MonthRevenue struct {
	Month  string  `db:"month" json:"month"`
	Amount float64 `db:"amount" json:"amount"`
}

// UserStats aggregates the user base
type UserStats struct {
	Total       int `json:"total"`
	Hosts       int `json:"hosts"`
	Guests      int `json:"guests"`
	Banned      int `json:"banned"`
	NewThisWeek int `json:"new_this_week"`
}

// PropertyStats aggregates listings
type PropertyStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	ShortTerm int `json:"short_term"`
	LongTerm  int `json:"long_term"`
}

// BookingStats aggregates bookings
type BookingStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Today     int `json:"today"`
}

// RevenueStats aggregates paid payments
type RevenueStats struct {
	Total     float64        `json:"total"`
	ThisMonth float64        `json:"this_month"`
	Currency  string         `json:"currency"`
	ByMonth   []MonthRevenue `json:"by_month"`
}

// PlatformStats is the admin console overview
type PlatformStats struct {
	Users      UserStats     `json:"users"`
	Properties PropertyStats `json:"properties"`
	Bookings   BookingStats  `json:"bookings"`
	Revenue    RevenueStats  `json:"revenue"`
}

// BookingOverview is one row of the booking oversight list
type BookingOverview struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	PropertyID    uuid.UUID      `db:"property_id" json:"property_id"`
	PropertyTitle string         `db:"property_title" json:"property_title"`
	GuestEmail    string         `db:"guest_email" json:"guest_email"`
	CheckIn       string         `db:"check_in" json:"check_in"`
	CheckOut      string         `db:"check_out" json:"check_out"`
	TotalAmount   float64        `db:"total_amount" json:"total_amount"`
	Status        string         `db:"status" json:"status"`
	CancelReason  sql.NullString `db:"cancel_reason" json:"-"`
	CreatedAt     string         `db:"created_at" json:"created_at"`
}

// Repository defines admin data access
type Repository interface {
	GetPlatformStats(ctx context.Context) (*PlatformStats, error)
	ListBookings(ctx context.Context, status string, limit, offset int) ([]*BookingOverview, int, error)
}

type repository struct {
	db       *sqlx.DB
	currency string
}

// NewRepository creates admin repository
func NewRepository(db *sqlx.DB, currency string) Repository {
	return &repository{db: db, currency: currency}
}

// GetPlatformStats runs the console aggregates. Individual query errors
// leave the field at zero rather than failing the whole overview.
func (r *repository) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{}
	stats.Revenue.Currency = r.currency

	_ = r.db.GetContext(ctx, &stats.Users.Total, `SELECT COUNT(*) FROM users`)
	_ = r.db.GetContext(ctx, &stats.Users.Hosts, `SELECT COUNT(*) FROM users WHERE role IN ('host', 'agent')`)
	_ = r.db.GetContext(ctx, &stats.Users.Guests, `SELECT COUNT(*) FROM users WHERE role = 'guest'`)
	_ = r.db.GetContext(ctx, &stats.Users.Banned, `SELECT COUNT(*) FROM users WHERE is_banned = true`)
	_ = r.db.GetContext(ctx, &stats.Users.NewThisWeek, `SELECT COUNT(*) FROM users WHERE created_at >= CURRENT_DATE - INTERVAL '7 days'`)

	_ = r.db.GetContext(ctx, &stats.Properties.Total, `SELECT COUNT(*) FROM properties WHERE deleted_at IS NULL`)
	_ = r.db.GetContext(ctx, &stats.Properties.Active, `SELECT COUNT(*) FROM properties WHERE deleted_at IS NULL AND is_active = true`)
	_ = r.db.GetContext(ctx, &stats.Properties.ShortTerm, `SELECT COUNT(*) FROM properties WHERE deleted_at IS NULL AND rental_kind = 'short_term'`)
	_ = r.db.GetContext(ctx, &stats.Properties.LongTerm, `SELECT COUNT(*) FROM properties WHERE deleted_at IS NULL AND rental_kind = 'long_term'`)

	_ = r.db.GetContext(ctx, &stats.Bookings.Total, `SELECT COUNT(*) FROM bookings`)
	_ = r.db.GetContext(ctx, &stats.Bookings.Pending, `SELECT COUNT(*) FROM bookings WHERE status = 'pending'`)
	_ = r.db.GetContext(ctx, &stats.Bookings.Confirmed, `SELECT COUNT(*) FROM bookings WHERE status = 'confirmed'`)
	_ = r.db.GetContext(ctx, &stats.Bookings.Completed, `SELECT COUNT(*) FROM bookings WHERE status = 'completed'`)
	_ = r.db.GetContext(ctx, &stats.Bookings.Cancelled, `SELECT COUNT(*) FROM bookings WHERE status = 'cancelled'`)
	_ = r.db.GetContext(ctx, &stats.Bookings.Today, `SELECT COUNT(*) FROM bookings WHERE created_at >= CURRENT_DATE`)

	_ = r.db.GetContext(ctx, &stats.Revenue.Total, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'paid'`)
	_ = r.db.GetContext(ctx, &stats.Revenue.ThisMonth, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'paid' AND paid_at >= DATE_TRUNC('month', CURRENT_DATE)`)

	byMonth := []MonthRevenue{}
	err := r.db.SelectContext(ctx, &byMonth, `
		SELECT TO_CHAR(DATE_TRUNC('month', paid_at), 'YYYY-MM') AS month,
		       COALESCE(SUM(amount), 0) AS amount
		FROM payments
		WHERE status = 'paid' AND paid_at IS NOT NULL
		GROUP BY 1
		ORDER BY 1 DESC
		LIMIT 12
	`)
	if err != nil {
		return nil, err
	}
	stats.Revenue.ByMonth = byMonth

	return stats, nil
}

func (r *repository) ListBookings(ctx context.Context, status string, limit, offset int) ([]*BookingOverview, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM bookings
		WHERE ($1 = '' OR status::text = $1)`, status); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT b.id, b.property_id,
		       p.title AS property_title,
		       u.email AS guest_email,
		       TO_CHAR(b.check_in, 'YYYY-MM-DD') AS check_in,
		       TO_CHAR(b.check_out, 'YYYY-MM-DD') AS check_out,
		       b.total_amount, b.status::text AS status, b.cancel_reason,
		       TO_CHAR(b.created_at, 'YYYY-MM-DD"T"HH24:MI:SS"Z"') AS created_at
		FROM bookings b
		JOIN properties p ON p.id = b.property_id
		JOIN users u ON u.id = b.guest_id
		WHERE ($1 = '' OR b.status::text = $1)
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`
	var rows []*BookingOverview
	if err := r.db.SelectContext(ctx, &rows, query, status, limit, offset); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
