package auction

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler owns one expiry timer per active auction in a registry
// keyed by auction id. Cancel is best-effort: an in-flight callback may
// still fire after Cancel returns, which is safe because EndAuction is
// idempotent.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	expire func(auctionID string)
	log    *zap.SugaredLogger
}

func NewScheduler(onExpire func(auctionID string), log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
		expire: onExpire,
		log:    log,
	}
}

// Schedule arms the expiry timer for an auction, replacing any
// existing one.
func (s *Scheduler) Schedule(auctionID string, d time.Duration) {
	if d < 0 {
		d = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[auctionID]; ok {
		old.Stop()
	}
	s.timers[auctionID] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.timers, auctionID)
		s.mu.Unlock()

		s.expire(auctionID)
	})
	s.log.Debugf("scheduled expiry for auction %s in %s", auctionID, d)
}

// Extend re-arms the timer with a new duration from now. Used by the
// anti-snipe extension.
func (s *Scheduler) Extend(auctionID string, d time.Duration) {
	s.Schedule(auctionID, d)
}

// Cancel drops the tracked handle. The auction may still expire through
// a callback that was already running.
func (s *Scheduler) Cancel(auctionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[auctionID]; ok {
		t.Stop()
		delete(s.timers, auctionID)
	}
}

// Tracked reports whether an expiry timer is armed for the auction. The
// recovery sweep uses it to find auctions that lost their timer.
func (s *Scheduler) Tracked(auctionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[auctionID]
	return ok
}

// Len returns the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
