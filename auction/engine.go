package auction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tycoonhq/tycoon-backend/config"
	"github.com/tycoonhq/tycoon-backend/models"
)

// Engine owns the auction state machine. All mutations to one auction
// are serialized through its liveAuction mutex; timer expiry and
// player commands race on that lock and the loser sees the committed
// state. Collaborator calls (ledger, ownership) never run under a lock:
// the terminal status flips and persists first, settlement follows and
// is idempotent per auction id so the recovery sweep can retry it.
type Engine struct {
	cfg        config.AuctionConfig
	store      Store
	players    PlayerStore
	properties PropertyStore
	ledger     Ledger
	notifier   Notifier
	sched      *Scheduler
	log        *zap.SugaredLogger

	mu   sync.RWMutex
	live map[string]*liveAuction

	hooksMu sync.RWMutex
	hooks   []hook
	hookSeq int

	now func() time.Time
}

type hook struct {
	id int
	fn func(Event)
}

type liveAuction struct {
	mu sync.Mutex
	a  *Auction
}

func NewEngine(cfg config.AuctionConfig, store Store, players PlayerStore, properties PropertyStore, ledger Ledger, notifier Notifier, log *zap.SugaredLogger) *Engine {
	e := &Engine{
		cfg:        cfg,
		store:      store,
		players:    players,
		properties: properties,
		ledger:     ledger,
		notifier:   notifier,
		log:        log,
		live:       make(map[string]*liveAuction),
		now:        time.Now,
	}
	e.sched = NewScheduler(e.onTimerExpired, log)
	return e
}

// Subscribe registers an in-process listener for every emitted event
// and returns its removal func. Hooks run synchronously after all
// engine locks are released, so a hook may call back into the engine.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.hooksMu.Lock()
	e.hookSeq++
	id := e.hookSeq
	e.hooks = append(e.hooks, hook{id: id, fn: fn})
	e.hooksMu.Unlock()

	return func() {
		e.hooksMu.Lock()
		for i, h := range e.hooks {
			if h.id == id {
				e.hooks = append(e.hooks[:i], e.hooks[i+1:]...)
				break
			}
		}
		e.hooksMu.Unlock()
	}
}

func (e *Engine) emit(events ...Event) {
	for _, ev := range events {
		if e.notifier != nil {
			e.notifier.Publish(ev.GameID, ev)
		}
		e.hooksMu.RLock()
		hooks := make([]hook, len(e.hooks))
		copy(hooks, e.hooks)
		e.hooksMu.RUnlock()
		for _, h := range hooks {
			h.fn(ev)
		}
	}
}

// StartOptions carries the optional overrides for StartAuction.
type StartOptions struct {
	StartingBid *float64
	Duration    *time.Duration
}

// StartAuction creates and activates an auction for a property. The
// default starting bid is 50% of list price, 75% for emergency
// auctions. Standard auctions refuse properties that already have an
// owner; foreclosure and emergency auctions override ownership and
// record the original owner.
func (e *Engine) StartAuction(gameID, propertyID uint, typ models.AuctionType, opts StartOptions) (*Auction, error) {
	prop, err := e.properties.Property(propertyID)
	if err != nil {
		return nil, wrapError(KindNotFound, err, fmt.Sprintf("property %d not found", propertyID))
	}
	if prop.InAuction {
		return nil, newError(KindConflict, "property %d is already in auction", propertyID)
	}
	if typ == models.AuctionStandard && prop.OwnerID != nil {
		return nil, newError(KindInvalid, "property %d is already owned", propertyID)
	}

	roster, err := e.players.ActivePlayers(gameID)
	if err != nil {
		return nil, wrapError(KindNotFound, err, fmt.Sprintf("game %d not found", gameID))
	}

	eligible := make(map[uint]bool, len(roster))
	for _, id := range roster {
		// The distressed/selling owner never bids on their own property.
		if prop.OwnerID != nil && id == *prop.OwnerID {
			continue
		}
		eligible[id] = true
	}
	if len(eligible) == 0 {
		return nil, newError(KindInvalid, "game %d has no eligible bidders", gameID)
	}

	startingBid := prop.ListPrice * 0.5
	if typ == models.AuctionEmergency {
		startingBid = prop.ListPrice * 0.75
	}
	if opts.StartingBid != nil {
		startingBid = *opts.StartingBid
	}

	duration := e.cfg.DefaultDuration
	if typ == models.AuctionEmergency {
		duration = e.cfg.EmergencyDuration
	}
	if opts.Duration != nil {
		duration = *opts.Duration
	}

	now := e.now()
	a := &Auction{
		ID:          uuid.NewString(),
		GameID:      gameID,
		PropertyID:  propertyID,
		Type:        typ,
		Status:      models.AuctionPending,
		StartingBid: startingBid,
		StartTime:   now,
		EndTime:     now.Add(duration),
		Eligible:    eligible,
		Passed:      make(map[uint]bool),
	}
	if typ != models.AuctionStandard {
		a.OriginalOwnerID = prop.OwnerID
	}

	// pending -> active happens before the auction is ever observable.
	a.Status = models.AuctionActive
	if err := e.store.Save(a); err != nil {
		return nil, wrapError(KindPersistence, err, "failed to persist auction")
	}
	if err := e.properties.SetInAuction(propertyID, true); err != nil {
		e.log.Warnf("auction %s: failed to flag property %d in auction: %v", a.ID, propertyID, err)
	}

	la := &liveAuction{a: a}
	e.mu.Lock()
	e.live[a.ID] = la
	e.mu.Unlock()

	e.sched.Schedule(a.ID, duration)
	e.appendEvent(a.ID, EventStarted, nil, &startingBid, string(typ))

	e.log.Infof("auction %s started: game=%d property=%d type=%s starting_bid=%.2f duration=%s",
		a.ID, gameID, propertyID, typ, startingBid, duration)
	e.emit(e.eventFor(a, EventStarted))

	return a.Clone(), nil
}

// PlaceBid validates and commits a bid. A bid landing inside the
// anti-snipe window pushes the end time out by the extension window and
// re-arms the timer.
func (e *Engine) PlaceBid(auctionID string, playerID uint, amount float64) error {
	la, err := e.getLive(auctionID)
	if err != nil {
		return err
	}

	player, err := e.players.Player(playerID)
	if err != nil {
		return wrapError(KindNotFound, err, fmt.Sprintf("player %d not found", playerID))
	}

	var events []Event

	la.mu.Lock()
	if err := func() error {
		if err := ValidateBid(la.a, player, amount); err != nil {
			return err
		}

		now := e.now()
		updated := la.a.Clone()
		updated.CurrentBid = amount
		updated.CurrentBidderID = &playerID
		updated.LastBidTime = &now

		extended := false
		if remaining := updated.EndTime.Sub(now); remaining < e.cfg.AntiSnipeThreshold {
			updated.EndTime = updated.EndTime.Add(e.cfg.AntiSnipeExtension)
			extended = true
		}

		if err := e.store.Save(updated); err != nil {
			return wrapError(KindPersistence, err, "failed to persist bid")
		}
		la.a = updated

		if extended {
			e.sched.Extend(updated.ID, updated.EndTime.Sub(now))
		}

		e.appendEvent(updated.ID, EventBidPlaced, &playerID, &amount, "")
		events = append(events, e.eventFor(updated, EventBidPlaced))
		if extended {
			e.appendEvent(updated.ID, EventTimerExtended, nil, nil, updated.EndTime.Format(time.RFC3339))
			events = append(events, e.eventFor(updated, EventTimerExtended))
		}
		return nil
	}(); err != nil {
		la.mu.Unlock()
		return err
	}
	la.mu.Unlock()

	e.log.Infof("auction %s: player %d bid %.2f", auctionID, playerID, amount)
	e.emit(events...)
	return nil
}

// Pass withdraws a player from the auction. Passing twice is a no-op
// success. When at most one eligible player remains the auction ends
// immediately, the standing high bid winning.
func (e *Engine) Pass(playerID uint, auctionID string) error {
	la, err := e.getLive(auctionID)
	if err != nil {
		return err
	}

	var events []Event
	var settlePending *Auction

	la.mu.Lock()
	if err := func() error {
		a := la.a
		switch a.Status {
		case models.AuctionActive:
		case models.AuctionCompleted, models.AuctionCancelled:
			return newError(KindAlreadyEnded, "auction %s already ended", a.ID)
		default:
			return newError(KindNotActive, "auction %s is not active", a.ID)
		}
		if !a.Eligible[playerID] {
			return newError(KindNotEligible, "player %d is not eligible for auction %s", playerID, a.ID)
		}
		if a.Passed[playerID] {
			return nil // idempotent
		}

		updated := a.Clone()
		updated.Passed[playerID] = true
		if err := e.store.Save(updated); err != nil {
			return wrapError(KindPersistence, err, "failed to persist pass")
		}
		la.a = updated

		e.appendEvent(updated.ID, EventPlayerPassed, &playerID, nil, "")
		ev := e.eventFor(updated, EventPlayerPassed)
		ev.PlayerID = &playerID
		events = append(events, ev)

		if len(updated.Remaining()) <= 1 {
			endEvents, toSettle, endErr := e.endLocked(la, "all players passed")
			if endErr != nil {
				return endErr
			}
			events = append(events, endEvents...)
			settlePending = toSettle
		}
		return nil
	}(); err != nil {
		la.mu.Unlock()
		return err
	}
	la.mu.Unlock()

	e.emit(events...)
	if settlePending != nil {
		e.settle(settlePending)
	}
	return nil
}

// EndAuction resolves an auction. Calling it on an already-terminal
// auction is a successful no-op; the timer callback, the recovery
// sweep, a pass cascade, and an explicit command may all race here.
func (e *Engine) EndAuction(auctionID, reason string) error {
	la, err := e.getLive(auctionID)
	if err != nil {
		if IsKind(err, KindAlreadyEnded) {
			return nil
		}
		return err
	}

	la.mu.Lock()
	events, toSettle, err := e.endLocked(la, reason)
	la.mu.Unlock()
	if err != nil {
		return err
	}

	e.emit(events...)
	if toSettle != nil {
		e.settle(toSettle)
	}
	return nil
}

// endLocked commits the terminal transition. Caller holds la.mu. The
// returned auction, when non-nil, must be settled after the lock is
// released.
func (e *Engine) endLocked(la *liveAuction, reason string) ([]Event, *Auction, error) {
	a := la.a
	if a.Terminal() {
		return nil, nil, nil
	}

	updated := a.Clone()
	updated.Status = models.AuctionCompleted
	updated.EndReason = reason
	if updated.HasBid() {
		price := updated.CurrentBid
		updated.FinalPrice = &price
	}
	if err := e.store.Save(updated); err != nil {
		// Still active; the recovery sweep finds and retries it.
		return nil, nil, wrapError(KindPersistence, err, "failed to persist auction end")
	}
	la.a = updated

	e.sched.Cancel(updated.ID)
	e.dropLive(updated.ID)
	e.appendEvent(updated.ID, EventEnded, updated.CurrentBidderID, updated.FinalPrice, reason)

	ev := e.eventFor(updated, EventEnded)
	ev.WinnerID = updated.CurrentBidderID
	ev.FinalPrice = updated.FinalPrice
	ev.Reason = reason

	e.log.Infof("auction %s ended: reason=%q winner=%v price=%v",
		updated.ID, reason, updated.CurrentBidderID, updated.FinalPrice)

	return []Event{ev}, updated.Clone(), nil
}

// CancelAuction aborts an active auction. No funds move and the
// property stays as it was.
func (e *Engine) CancelAuction(auctionID, reason string) error {
	la, err := e.getLive(auctionID)
	if err != nil {
		return err
	}

	var events []Event
	var propertyID uint

	la.mu.Lock()
	if err := func() error {
		a := la.a
		if a.Terminal() {
			return newError(KindAlreadyEnded, "auction %s already ended", a.ID)
		}
		propertyID = a.PropertyID

		updated := a.Clone()
		updated.Status = models.AuctionCancelled
		updated.EndReason = reason
		updated.Settled = true // nothing to settle
		if err := e.store.Save(updated); err != nil {
			return wrapError(KindPersistence, err, "failed to persist cancellation")
		}
		la.a = updated

		e.sched.Cancel(updated.ID)
		e.dropLive(updated.ID)
		e.appendEvent(updated.ID, EventCancelled, nil, nil, reason)

		ev := e.eventFor(updated, EventCancelled)
		ev.Reason = reason
		events = append(events, ev)
		return nil
	}(); err != nil {
		la.mu.Unlock()
		return err
	}
	la.mu.Unlock()

	if err := e.properties.SetInAuction(propertyID, false); err != nil {
		e.log.Warnf("auction %s: failed to clear in-auction flag: %v", auctionID, err)
	}

	e.log.Infof("auction %s cancelled: %s", auctionID, reason)
	e.emit(events...)
	return nil
}

// ActiveAuctions lists the active auctions of a game.
func (e *Engine) ActiveAuctions(gameID uint) ([]*Auction, error) {
	rows, err := e.store.Active(gameID)
	if err != nil {
		return nil, wrapError(KindPersistence, err, "failed to list auctions")
	}
	return rows, nil
}

// AuctionStatus returns a snapshot of one auction, live or archived.
func (e *Engine) AuctionStatus(auctionID string) (*Auction, error) {
	e.mu.RLock()
	la, ok := e.live[auctionID]
	e.mu.RUnlock()
	if ok {
		la.mu.Lock()
		snap := la.a.Clone()
		la.mu.Unlock()
		return snap, nil
	}

	a, err := e.store.Get(auctionID)
	if err != nil {
		return nil, wrapError(KindPersistence, err, "failed to load auction")
	}
	if a == nil {
		return nil, newError(KindNotFound, "auction %s not found", auctionID)
	}
	return a, nil
}

// CleanupStaleAuctions force-ends active auctions whose end time passed
// at least age ago. Returns how many terminal transitions it forced.
func (e *Engine) CleanupStaleAuctions(age time.Duration) (int, error) {
	rows, err := e.store.AllActive()
	if err != nil {
		return 0, wrapError(KindPersistence, err, "failed to scan auctions")
	}

	now := e.now()
	ended := 0
	for _, a := range rows {
		if now.Sub(a.EndTime) < age {
			continue
		}
		if err := e.EndAuction(a.ID, "stale auction cleanup"); err != nil {
			e.log.Errorf("cleanup: failed to end stale auction %s: %v", a.ID, err)
			continue
		}
		ended++
	}
	if ended > 0 {
		e.log.Infof("cleanup: force-ended %d stale auctions", ended)
	}
	return ended, nil
}

// Restore loads active auctions from the store after a restart and
// re-arms their timers. Overdue auctions expire immediately.
func (e *Engine) Restore() error {
	rows, err := e.store.AllActive()
	if err != nil {
		return wrapError(KindPersistence, err, "failed to restore auctions")
	}

	now := e.now()
	for _, a := range rows {
		e.mu.Lock()
		if _, ok := e.live[a.ID]; !ok {
			e.live[a.ID] = &liveAuction{a: a}
		}
		e.mu.Unlock()
		e.sched.Schedule(a.ID, a.EndTime.Sub(now))
	}
	if len(rows) > 0 {
		e.log.Infof("restored %d active auctions", len(rows))
	}
	return nil
}

// RunSweeper runs the periodic recovery sweep until ctx is done.
func (e *Engine) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Sweep()
		}
	}
}

// Sweep is one pass of the recovery sweep: force-end overdue active
// auctions (lost timer), re-arm untracked ones (process restart), and
// retry settlement of completed-but-unsettled auctions (crash between
// the terminal flip and the collaborator calls).
func (e *Engine) Sweep() {
	now := e.now()

	rows, err := e.store.AllActive()
	if err != nil {
		e.log.Errorf("sweep: failed to scan active auctions: %v", err)
	} else {
		for _, a := range rows {
			switch {
			case a.EndTime.Before(now):
				if err := e.EndAuction(a.ID, "expired (recovered by sweep)"); err != nil {
					e.log.Errorf("sweep: failed to end overdue auction %s: %v", a.ID, err)
				}
			case !e.sched.Tracked(a.ID):
				if _, err := e.adopt(a); err != nil {
					continue // ended since the scan
				}
				e.log.Warnf("sweep: re-arming lost timer for auction %s", a.ID)
				e.sched.Schedule(a.ID, a.EndTime.Sub(now))
			}
		}
	}

	unsettled, err := e.store.UnsettledCompleted()
	if err != nil {
		e.log.Errorf("sweep: failed to scan unsettled auctions: %v", err)
		return
	}
	for _, a := range unsettled {
		e.settle(a)
	}
}

// settle performs the post-terminal collaborator calls: funds transfer,
// ownership assignment, in-auction flag clearing. Every step is
// idempotent per auction id, so a partial failure is retried by the
// sweep without double-charging.
func (e *Engine) settle(a *Auction) {
	if a.HasBid() {
		bidder := *a.CurrentBidderID
		payee := uint(0) // bank; foreclosure proceeds never reach the old owner
		if a.Type == models.AuctionEmergency && a.OriginalOwnerID != nil {
			payee = *a.OriginalOwnerID
		}

		memo := fmt.Sprintf("auction:%s:settlement", a.ID)
		if err := e.ledger.Transfer(bidder, payee, a.CurrentBid, memo); err != nil {
			e.log.Errorf("auction %s: settlement transfer failed: %v", a.ID, err)
			return
		}
		if err := e.properties.AssignOwner(a.PropertyID, bidder); err != nil {
			e.log.Errorf("auction %s: failed to assign property %d to %d: %v", a.ID, a.PropertyID, bidder, err)
			return
		}
	}

	if err := e.properties.SetInAuction(a.PropertyID, false); err != nil {
		e.log.Errorf("auction %s: failed to clear in-auction flag: %v", a.ID, err)
		return
	}
	if err := e.store.MarkSettled(a.ID); err != nil {
		e.log.Errorf("auction %s: failed to mark settled: %v", a.ID, err)
	}
}

func (e *Engine) onTimerExpired(auctionID string) {
	if err := e.EndAuction(auctionID, "expired"); err != nil {
		// Left to the recovery sweep.
		e.log.Errorf("auction %s: timer-driven end failed: %v", auctionID, err)
	}
}

// getLive returns the serialization handle for an auction, adopting an
// active row from the store when the auction is not in memory yet.
func (e *Engine) getLive(auctionID string) (*liveAuction, error) {
	e.mu.RLock()
	la, ok := e.live[auctionID]
	e.mu.RUnlock()
	if ok {
		return la, nil
	}

	a, err := e.store.Get(auctionID)
	if err != nil {
		return nil, wrapError(KindPersistence, err, "failed to load auction")
	}
	if a == nil {
		return nil, newError(KindNotFound, "auction %s not found", auctionID)
	}
	return e.adopt(a)
}

// adopt inserts an active snapshot into the live map. The store is
// re-read under the registry lock: a terminal transition committed
// between the caller's read and this insert must not be resurrected as
// a live auction.
func (e *Engine) adopt(a *Auction) (*liveAuction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if la, ok := e.live[a.ID]; ok {
		return la, nil
	}

	cur, err := e.store.Get(a.ID)
	if err != nil {
		return nil, wrapError(KindPersistence, err, "failed to load auction")
	}
	if cur != nil {
		a = cur
	}
	if a.Terminal() {
		return nil, newError(KindAlreadyEnded, "auction %s already ended", a.ID)
	}

	la := &liveAuction{a: a}
	e.live[a.ID] = la
	return la, nil
}

func (e *Engine) dropLive(auctionID string) {
	e.mu.Lock()
	delete(e.live, auctionID)
	e.mu.Unlock()
}

func (e *Engine) appendEvent(auctionID, eventType string, playerID *uint, amount *float64, detail string) {
	if err := e.store.AppendEvent(auctionID, eventType, playerID, amount, detail); err != nil {
		e.log.Warnf("auction %s: failed to append %s to event log: %v", auctionID, eventType, err)
	}
}
