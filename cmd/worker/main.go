package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/krib/krib-api/internal/config"
	"github.com/krib/krib-api/internal/domain/booking"
	"github.com/krib/krib-api/internal/domain/notification"
	"github.com/krib/krib-api/internal/domain/payment"
	"github.com/krib/krib-api/internal/pkg/database"
)

const (
	pollInterval      = 1 * time.Minute
	reminderLead      = 24 * time.Hour
	reminderDedupeTTL = 48 * time.Hour
	notificationAge   = 90 * 24 * time.Hour
	retentionEvery    = 24 * time.Hour
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().Msg("Starting maintenance worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)
	if rdb == nil {
		log.Warn().Msg("Redis not configured, payment reminders disabled")
	}

	paymentRepo := payment.NewRepository(db)
	bookingRepo := booking.NewRepository(db, paymentRepo)
	notificationRepo := notification.NewRepository(db)
	notifications := notification.NewService(notificationRepo)

	w := &worker{
		db:               db,
		rdb:              rdb,
		bookings:         bookingRepo,
		notifications:    notifications,
		notificationRepo: notificationRepo,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	lastRetention := time.Time{}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("maintenance worker stopped")
			return
		case <-ticker.C:
		}

		w.expireUnpaidBookings(ctx)
		w.sendPaymentReminders(ctx)

		if time.Since(lastRetention) >= retentionEvery {
			w.purgeOldNotifications(ctx)
			lastRetention = time.Now()
		}
	}
}

type worker struct {
	db               *sqlx.DB
	rdb              *redis.Client
	bookings         booking.Repository
	notifications    *notification.Service
	notificationRepo notification.Repository
}

// expireUnpaidBookings cancels pending bookings whose booking payment
// blew past its due date, cascading to the payment rows.
func (w *worker) expireUnpaidBookings(ctx context.Context) {
	var ids []uuid.UUID
	err := w.db.SelectContext(ctx, &ids, `
		SELECT b.id
		FROM bookings b
		WHERE b.status = 'pending'
		  AND EXISTS (
			SELECT 1 FROM payments pay
			WHERE pay.booking_id = b.id
			  AND pay.type = 'booking_payment'
			  AND pay.status = 'pending'
			  AND pay.due_at < NOW()
		  )
		LIMIT 100
	`)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query overdue bookings")
		return
	}

	for _, id := range ids {
		if err := w.bookings.CancelWithPayments(ctx, id, "payment overdue"); err != nil {
			log.Error().Err(err).Str("booking_id", id.String()).Msg("Failed to expire booking")
			continue
		}
		log.Info().Str("booking_id", id.String()).Msg("Expired unpaid booking")
	}
}

type dueReminder struct {
	PaymentID     uuid.UUID `db:"payment_id"`
	BookingID     uuid.UUID `db:"booking_id"`
	GuestID       uuid.UUID `db:"guest_id"`
	PropertyTitle string    `db:"property_title"`
}

// sendPaymentReminders notifies guests about payments coming due within
// the lead window. Redis dedupes so each payment is reminded once;
// without Redis the dedupe cannot hold, so reminders are skipped.
func (w *worker) sendPaymentReminders(ctx context.Context) {
	if w.rdb == nil {
		return
	}

	var rows []dueReminder
	err := w.db.SelectContext(ctx, &rows, `
		SELECT pay.id AS payment_id, b.id AS booking_id, b.guest_id,
		       p.title AS property_title
		FROM payments pay
		JOIN bookings b ON b.id = pay.booking_id
		JOIN properties p ON p.id = b.property_id
		WHERE pay.status = 'pending'
		  AND pay.due_at > NOW()
		  AND pay.due_at < NOW() + $1::interval
		LIMIT 200
	`, reminderLead.String())
	if err != nil {
		log.Error().Err(err).Msg("Failed to query due payments")
		return
	}

	for _, row := range rows {
		key := "payment_reminder:" + row.PaymentID.String()
		set, err := w.rdb.SetNX(ctx, key, "1", reminderDedupeTTL).Result()
		if err != nil {
			log.Warn().Err(err).Msg("Reminder dedupe check failed")
			continue
		}
		if !set {
			continue
		}

		w.notifications.NotifyPaymentDue(ctx, row.GuestID, row.PropertyTitle, row.BookingID, row.PaymentID)
		log.Info().
			Str("payment_id", row.PaymentID.String()).
			Str("guest_id", row.GuestID.String()).
			Msg("Payment reminder sent")
	}
}

func (w *worker) purgeOldNotifications(ctx context.Context) {
	n, err := w.notificationRepo.DeleteOlderThan(ctx, notificationAge)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge old notifications")
		return
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Msg("Purged old notifications")
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
