package auction

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tycoonhq/tycoon-backend/models"
)

// QueueItem is one property in a sequential auction run, with an
// optional starting-bid override.
type QueueItem struct {
	PropertyID  uint     `json:"property_id"`
	StartingBid *float64 `json:"starting_bid,omitempty"`
}

// Coordinator chains a queue of properties into consecutive auctions.
// It advances on every ended/cancelled event for the auction it is
// tracking and marks the sequence completed when the queue drains.
type Coordinator struct {
	ID     string
	GameID uint

	eng   *Engine
	log   *zap.SugaredLogger
	unsub func()

	mu        sync.Mutex
	queue     []QueueItem
	index     int
	current   string // auction id being tracked
	completed []uint // property ids auctioned so far
	done      bool
}

// StartSequentialAuctions builds a coordinator for the queue,
// subscribes it to the engine, and starts the first auction. The
// coordinator unsubscribes itself once the queue drains.
func StartSequentialAuctions(eng *Engine, gameID uint, queue []QueueItem, log *zap.SugaredLogger) (*Coordinator, error) {
	if len(queue) == 0 {
		return nil, newError(KindInvalid, "sequential auction queue is empty")
	}

	c := &Coordinator{
		ID:     uuid.NewString(),
		GameID: gameID,
		eng:    eng,
		log:    log,
		queue:  queue,
	}

	c.unsub = eng.Subscribe(c.handleEvent)

	if err := c.startNext(); err != nil {
		c.mu.Lock()
		c.done = true
		c.mu.Unlock()
		c.unsub()
		return nil, err
	}

	log.Infof("sequence %s: started for game %d with %d properties", c.ID, gameID, len(queue))
	return c, nil
}

// Done reports whether the sequence has completed.
func (c *Coordinator) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Progress returns completed and pending property ids.
func (c *Coordinator) Progress() (completed, pending []uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	completed = append([]uint(nil), c.completed...)
	for _, item := range c.queue[c.index:] {
		pending = append(pending, item.PropertyID)
	}
	return completed, pending
}

func (c *Coordinator) handleEvent(ev Event) {
	if ev.Type != EventEnded && ev.Type != EventCancelled {
		return
	}

	c.mu.Lock()
	if c.done || ev.AuctionID != c.current {
		c.mu.Unlock()
		return
	}
	// Claim the terminal event; the catch-up check in startNext races
	// here and exactly one of the two advances the queue.
	c.current = ""
	c.completed = append(c.completed, ev.PropertyID)
	c.mu.Unlock()

	if err := c.startNext(); err != nil && !IsKind(err, KindInvalid) {
		c.log.Errorf("sequence %s: failed to advance: %v", c.ID, err)
	}
}

// startNext launches the next queued auction, skipping properties the
// engine refuses (already owned, already in auction). Emits
// sequential_auction_next per launch and sequential_auction_completed
// when the queue is exhausted.
func (c *Coordinator) startNext() error {
	for {
		c.mu.Lock()
		if c.done {
			c.mu.Unlock()
			return nil
		}
		if c.index >= len(c.queue) {
			c.done = true
			c.mu.Unlock()
			c.unsub()

			c.eng.emit(Event{
				Type:       EventSequentialCompleted,
				GameID:     c.GameID,
				SequenceID: c.ID,
			})
			c.log.Infof("sequence %s: completed", c.ID)
			return nil
		}
		item := c.queue[c.index]
		position := c.index
		c.index++
		c.mu.Unlock()

		a, err := c.eng.StartAuction(c.GameID, item.PropertyID, models.AuctionStandard, StartOptions{
			StartingBid: item.StartingBid,
		})
		if err != nil {
			c.log.Warnf("sequence %s: skipping property %d: %v", c.ID, item.PropertyID, err)
			continue
		}

		c.mu.Lock()
		c.current = a.ID
		remaining := len(c.queue) - c.index
		c.mu.Unlock()

		c.eng.emit(Event{
			Type:       EventSequentialNext,
			AuctionID:  a.ID,
			GameID:     c.GameID,
			PropertyID: item.PropertyID,
			SequenceID: c.ID,
			Position:   position,
			Remaining:  remaining,
		})

		// A very short auction can reach its terminal state before
		// c.current was set above; its ended event found nothing to
		// match and the queue would stall. Catch up here: whichever of
		// this check and handleEvent claims c.current first advances.
		if snap, err := c.eng.AuctionStatus(a.ID); err == nil && snap.Terminal() {
			c.mu.Lock()
			claimed := !c.done && c.current == a.ID
			if claimed {
				c.current = ""
				c.completed = append(c.completed, item.PropertyID)
			}
			c.mu.Unlock()
			if claimed {
				continue
			}
		}
		return nil
	}
}
