package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/krib/krib-api/internal/config"
	"github.com/krib/krib-api/internal/domain/admin"
	"github.com/krib/krib-api/internal/domain/auth"
	"github.com/krib/krib-api/internal/domain/booking"
	"github.com/krib/krib-api/internal/domain/chat"
	"github.com/krib/krib-api/internal/domain/dashboard"
	"github.com/krib/krib-api/internal/domain/lease"
	"github.com/krib/krib-api/internal/domain/notification"
	"github.com/krib/krib-api/internal/domain/payment"
	"github.com/krib/krib-api/internal/domain/property"
	"github.com/krib/krib-api/internal/domain/review"
	"github.com/krib/krib-api/internal/domain/user"
	"github.com/krib/krib-api/internal/domain/wishlist"
	"github.com/krib/krib-api/internal/middleware"
	"github.com/krib/krib-api/internal/pkg/database"
	"github.com/krib/krib-api/internal/pkg/imaging"
	"github.com/krib/krib-api/internal/pkg/jwt"
	pkgresponse "github.com/krib/krib-api/internal/pkg/response"
	"github.com/krib/krib-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Krib API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	r2Storage, err := storage.NewR2Storage(storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		BucketName:      cfg.R2BucketName,
		PublicURL:       cfg.R2PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create R2 storage")
	}

	imgConfig := imaging.DefaultConfig()
	imgConfig.ThumbWidth = cfg.ThumbnailMaxWidth
	imageProcessor := imaging.NewProcessor(imgConfig)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	propertyRepo := property.NewRepository(db)
	paymentRepo := payment.NewRepository(db)
	bookingRepo := booking.NewRepository(db, paymentRepo)
	leaseRepo := lease.NewRepository(db)
	chatRepo := chat.NewRepository(db)
	wishlistRepo := wishlist.NewRepository(db)
	reviewRepo := review.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	adminRepo := admin.NewRepository(db, cfg.DefaultCurrency)
	dashboardRepo := dashboard.NewRepository(db, cfg.DefaultCurrency)

	// ---------- WebSocket hub ----------
	chatHub := chat.NewHub(redis)
	go chatHub.Run()

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService, redis)
	propertyService := property.NewService(propertyRepo, userRepo, r2Storage, imageProcessor)
	bookingService := booking.NewService(bookingRepo, propertyRepo, booking.Config{
		ServiceFeeRate: cfg.ServiceFeeRate,
		PaymentDue:     time.Duration(cfg.PaymentDueHours) * time.Hour,
		Currency:       cfg.DefaultCurrency,
	})
	paymentService := payment.NewService(paymentRepo)
	leaseService := lease.NewService(leaseRepo, propertyRepo, cfg.DefaultCurrency)
	chatService := chat.NewService(chatRepo, chatHub)
	reviewService := review.NewService(reviewRepo, propertyRepo)
	notificationService := notification.NewService(notificationRepo)

	bookingService.SetNotifier(notificationService)
	leaseService.SetNotifier(notificationService)
	chatService.SetNotifier(&chatNotifier{notifications: notificationService, users: userRepo})

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	userHandler := user.NewHandler(userRepo)
	propertyHandler := property.NewHandler(propertyService)
	bookingHandler := booking.NewHandler(bookingService)
	paymentHandler := payment.NewHandler(paymentService)
	leaseHandler := lease.NewHandler(leaseService)
	chatHandler := chat.NewHandler(chatService, chatHub, redis, cfg.AllowedOrigins)
	wishlistHandler := wishlist.NewHandler(wishlistRepo)
	reviewHandler := review.NewHandler(reviewService)
	notificationHandler := notification.NewHandler(notificationService)
	adminHandler := admin.NewHandler(adminRepo, userRepo, propertyRepo)
	dashboardHandler := dashboard.NewHandler(dashboardRepo)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	handlers := apiHandlers{
		auth:          authHandler,
		user:          userHandler,
		property:      propertyHandler,
		booking:       bookingHandler,
		payment:       paymentHandler,
		lease:         leaseHandler,
		chat:          chatHandler,
		wishlist:      wishlistHandler,
		review:        reviewHandler,
		notifications: notificationHandler,
		admin:         adminHandler,
		dashboard:     dashboardHandler,
	}
	r.Route("/api/v1", func(r chi.Router) {
		mountAPIRoutes(r, handlers, authMiddleware)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	chatHub.Shutdown()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

// apiHandlers bundles the domain handlers mounted under /api/v1
type apiHandlers struct {
	auth          *auth.Handler
	user          *user.Handler
	property      *property.Handler
	booking       *booking.Handler
	payment       *payment.Handler
	lease         *lease.Handler
	chat          *chat.Handler
	wishlist      *wishlist.Handler
	review        *review.Handler
	notifications *notification.Handler
	admin         *admin.Handler
	dashboard     *dashboard.Handler
}

func mountAPIRoutes(r chi.Router, h apiHandlers, authMiddleware func(http.Handler) http.Handler) {
	r.Mount("/auth", h.auth.Routes(authMiddleware))
	r.Mount("/users", h.user.Routes(authMiddleware))
	r.Mount("/properties", h.property.Routes(authMiddleware))
	r.Mount("/bookings", h.booking.Routes(authMiddleware))
	r.Mount("/payments", h.payment.Routes(authMiddleware))
	r.Mount("/leases", h.lease.Routes(authMiddleware))
	r.Mount("/chat", h.chat.Routes(authMiddleware))
	r.Mount("/wishlist", h.wishlist.Routes(authMiddleware))
	r.Mount("/reviews", h.review.Routes(authMiddleware))
	r.Mount("/notifications", h.notifications.Routes(authMiddleware))
	r.Mount("/admin", h.admin.Routes(authMiddleware))
	r.Mount("/dashboard", h.dashboard.Routes(authMiddleware))
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}

// chatNotifier bridges chat messages into persisted notifications,
// resolving the sender's display name on the way.
type chatNotifier struct {
	notifications *notification.Service
	users         user.Repository
}

func (n *chatNotifier) NotifyNewMessage(ctx context.Context, recipientID, senderID uuid.UUID, preview string, roomID, messageID uuid.UUID) {
	senderName := "a user"
	if sender, err := n.users.GetByID(ctx, senderID); err == nil && sender != nil {
		senderName = sender.FullName()
	}
	n.notifications.NotifyNewMessage(ctx, recipientID, senderName, preview, roomID, messageID)
}
