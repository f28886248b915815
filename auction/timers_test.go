package auction

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestSchedulerFiresOnce(t *testing.T) {
	var fired int32
	s := NewScheduler(func(id string) {
		atomic.AddInt32(&fired, 1)
	}, zap.NewNop().Sugar())

	s.Schedule("a1", 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("fired %d times, want 1", got)
	}
	if s.Tracked("a1") {
		t.Error("fired timer still tracked")
	}
}

func TestSchedulerExtendReplacesTimer(t *testing.T) {
	var mu sync.Mutex
	var firedAt time.Time
	s := NewScheduler(func(id string) {
		mu.Lock()
		firedAt = time.Now()
		mu.Unlock()
	}, zap.NewNop().Sugar())

	start := time.Now()
	s.Schedule("a1", 20*time.Millisecond)
	s.Extend("a1", 80*time.Millisecond)
	if s.Len() != 1 {
		t.Fatalf("timers = %d, want 1 after extend", s.Len())
	}

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if firedAt.IsZero() {
		t.Fatal("timer never fired")
	}
	if elapsed := firedAt.Sub(start); elapsed < 70*time.Millisecond {
		t.Errorf("fired after %s, want >= 80ms (old timer not replaced)", elapsed)
	}
}

func TestSchedulerCancel(t *testing.T) {
	var fired int32
	s := NewScheduler(func(id string) {
		atomic.AddInt32(&fired, 1)
	}, zap.NewNop().Sugar())

	s.Schedule("a1", 30*time.Millisecond)
	s.Cancel("a1")

	if s.Tracked("a1") {
		t.Error("cancelled timer still tracked")
	}
	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("cancelled timer fired %d times", got)
	}
}

func TestSchedulerCancelUnknownIsNoop(t *testing.T) {
	s := NewScheduler(func(id string) {}, zap.NewNop().Sugar())
	s.Cancel("never-scheduled")
}

func TestSchedulerNegativeDurationFiresImmediately(t *testing.T) {
	var fired int32
	s := NewScheduler(func(id string) {
		atomic.AddInt32(&fired, 1)
	}, zap.NewNop().Sugar())

	// Restore of an overdue auction schedules a negative remaining time.
	s.Schedule("a1", -5*time.Second)
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Fatalf("fired %d times, want 1", got)
	}
}

func TestSchedulerTracksPerAuction(t *testing.T) {
	s := NewScheduler(func(id string) {}, zap.NewNop().Sugar())

	s.Schedule("a1", time.Minute)
	s.Schedule("a2", time.Minute)
	if s.Len() != 2 {
		t.Fatalf("timers = %d, want 2", s.Len())
	}

	// Re-scheduling the same auction replaces, not duplicates.
	s.Schedule("a1", time.Minute)
	if s.Len() != 2 {
		t.Fatalf("timers = %d after reschedule, want 2", s.Len())
	}

	s.Cancel("a1")
	if s.Tracked("a1") || !s.Tracked("a2") {
		t.Error("cancel removed the wrong handle")
	}
}
