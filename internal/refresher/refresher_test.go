package refresher

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRejectsBadSchedule(t *testing.T) {
	t.Parallel()
	if _, err := New("not a cron spec", func(context.Context) error { return nil }, slog.Default()); err == nil {
		t.Fatal("expected error for malformed schedule")
	}
}

func TestStartFiresOnSchedule(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	service, err := New("* * * * *", func(context.Context) error {
		calls.Add(1)
		return nil
	}, slog.Default())
	if err != nil {
		t.Fatalf("create refresher: %v", err)
	}
	// Pin the clock just before a minute boundary so the first tick is
	// near-immediate.
	base := time.Date(2026, 9, 1, 12, 0, 59, 900_000_000, time.UTC)
	service.now = func() time.Time { return base }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Start(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("refresh never fired")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestStartSurvivesRefreshFailure(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	service, err := New("* * * * *", func(context.Context) error {
		calls.Add(1)
		return errors.New("upstream down")
	}, slog.Default())
	if err != nil {
		t.Fatalf("create refresher: %v", err)
	}
	base := time.Date(2026, 9, 1, 12, 0, 59, 900_000_000, time.UTC)
	service.now = func() time.Time { return base }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Start(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("refresh never fired")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("expected failures to be swallowed, got %v", err)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	t.Parallel()
	service, err := New("*/10 * * * *", func(context.Context) error { return nil }, slog.Default())
	if err != nil {
		t.Fatalf("create refresher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop on cancellation")
	}
}
