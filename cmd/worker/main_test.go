package main

import (
	"context"
	"testing"

	"github.com/krib/krib-api/internal/pkg/database"
)

func TestNewRedis_UnconfiguredReturnsNilClient(t *testing.T) {
	rdb, err := database.NewRedis("")
	if err != nil {
		t.Fatalf("expected no error for empty redis url, got %v", err)
	}
	if rdb != nil {
		t.Fatalf("expected nil client for empty redis url, got %v", rdb)
	}
}

func TestSendPaymentReminders_SkipsWithoutRedis(t *testing.T) {
	rdb, err := database.NewRedis("")
	if err != nil {
		t.Fatalf("redis setup failed: %v", err)
	}

	// The nil-client guard must fire before any database or Redis
	// round-trip, otherwise a Redis-less deployment panics here.
	w := &worker{rdb: rdb}
	w.sendPaymentReminders(context.Background())
}
