package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

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
	"github.com/krib/krib-api/internal/pkg/jwt"
)

func testHandlers() apiHandlers {
	return apiHandlers{
		auth:          auth.NewHandler(nil),
		user:          user.NewHandler(nil),
		property:      property.NewHandler(nil),
		booking:       booking.NewHandler(nil),
		payment:       payment.NewHandler(nil),
		lease:         lease.NewHandler(nil),
		chat:          chat.NewHandler(nil, nil, nil, nil),
		wishlist:      wishlist.NewHandler(nil),
		review:        review.NewHandler(nil),
		notifications: notification.NewHandler(nil),
		admin:         admin.NewHandler(nil, nil, nil),
		dashboard:     dashboard.NewHandler(nil),
	}
}

func TestMountAPIRoutes_NoPatternConflicts(t *testing.T) {
	authMiddleware := middleware.Auth(jwt.NewService("test-secret", time.Minute, time.Hour))

	root := chi.NewRouter()
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				t.Fatalf("mounting api routes panicked: %v", rec)
			}
		}()
		root.Route("/api/v1", func(r chi.Router) {
			mountAPIRoutes(r, testHandlers(), authMiddleware)
		})
	}()
}

func TestMountAPIRoutes_ProtectedEndpointsRequireAuth(t *testing.T) {
	authMiddleware := middleware.Auth(jwt.NewService("test-secret", time.Minute, time.Hour))

	root := chi.NewRouter()
	root.Route("/api/v1", func(r chi.Router) {
		mountAPIRoutes(r, testHandlers(), authMiddleware)
	})

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodPost, "/api/v1/bookings/"},
		{http.MethodGet, "/api/v1/bookings/"},
		{http.MethodPost, "/api/v1/leases/"},
		{http.MethodGet, "/api/v1/wishlist/"},
		{http.MethodGet, "/api/v1/notifications/"},
		{http.MethodGet, "/api/v1/payments/"},
		{http.MethodGet, "/api/v1/admin/stats"},
		{http.MethodGet, "/api/v1/dashboard/host/stats"},
		{http.MethodGet, "/api/v1/chat/rooms"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			rr := httptest.NewRecorder()
			root.ServeHTTP(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", rr.Code)
			}
		})
	}
}

func TestMountAPIRoutes_RejectsGarbageToken(t *testing.T) {
	authMiddleware := middleware.Auth(jwt.NewService("test-secret", time.Minute, time.Hour))

	root := chi.NewRouter()
	root.Route("/api/v1", func(r chi.Router) {
		mountAPIRoutes(r, testHandlers(), authMiddleware)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr := httptest.NewRecorder()
	root.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}
