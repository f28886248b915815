package auction

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/tycoonhq/tycoon-backend/models"
)

// Strategy names a bot bidding temperament.
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyDefault      Strategy = "default"
	StrategyAggressive   Strategy = "aggressive"
	StrategyStrategic    Strategy = "strategic"
)

// Decision is the outcome of one bot evaluation.
type Decision struct {
	Bid    bool
	Amount float64
}

// Decide evaluates one auction for a bot. Deterministic: the same
// inputs always produce the same decision.
//
// Valuation starts at list price and is scaled by the strategy
// multiplier; the strategic multiplier grows with synergy between the
// property and the bot's holdings. Willingness is capped by balance.
// Bids land on whole dollars.
func Decide(a *Auction, bot PlayerSnapshot, strategy Strategy, prop PropertySnapshot, portfolio PortfolioSnapshot, increment float64) Decision {
	valuation := prop.ListPrice

	var multiplier float64
	switch strategy {
	case StrategyConservative:
		multiplier = 0.6
	case StrategyAggressive:
		multiplier = 1.4
	case StrategyStrategic:
		multiplier = strategicMultiplier(prop, portfolio)
	default:
		multiplier = 1.0
	}

	maxWillingness := math.Min(valuation*multiplier, bot.Balance)

	current := a.CurrentBid
	if !a.HasBid() {
		// No bid yet: the number to beat is one increment under the
		// starting bid, so the opening bot bid is the starting bid.
		current = a.StartingBid - increment
	}

	if current >= maxWillingness {
		return Decision{}
	}

	amount := math.Floor(math.Min(current+increment, maxWillingness))
	if amount <= current {
		return Decision{}
	}
	return Decision{Bid: true, Amount: amount}
}

func strategicMultiplier(prop PropertySnapshot, pf PortfolioSnapshot) float64 {
	m := 1.0
	switch prop.Kind {
	case models.PropertyRailroad:
		m += 0.2 * float64(pf.RailroadsOwned)
	case models.PropertyUtility:
		if pf.OwnsUtility {
			m += 0.5
		}
	default:
		if pf.GroupSize > 0 && pf.GroupOwned >= pf.GroupSize-1 {
			m += 0.5 // the win would complete the color group
		} else if pf.GroupOwned > 0 {
			m += 0.2
		}
	}
	return m
}

// BotRunner bids on behalf of registered bot players. It is just a
// privileged caller of the engine's public contract: it listens for
// auction events and reacts with PlaceBid/Pass like any other player.
type BotRunner struct {
	eng   *Engine
	log   *zap.SugaredLogger
	queue chan string

	bots map[uint]Strategy // playerID -> strategy
}

func NewBotRunner(eng *Engine, bots map[uint]Strategy, log *zap.SugaredLogger) *BotRunner {
	r := &BotRunner{
		eng:   eng,
		log:   log,
		queue: make(chan string, 256),
		bots:  make(map[uint]Strategy, len(bots)),
	}
	for id, s := range bots {
		r.bots[id] = s
	}

	eng.Subscribe(func(ev Event) {
		switch ev.Type {
		case EventStarted, EventBidPlaced, EventPlayerPassed:
			select {
			case r.queue <- ev.AuctionID:
			default:
				// Queue full; the next event for this auction re-triggers.
			}
		}
	})
	return r
}

// Run drains the reaction queue until ctx is done.
func (r *BotRunner) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case auctionID := <-r.queue:
			r.React(auctionID)
		}
	}
}

// React gives every registered bot in the auction one decision. A bot
// that is outbid reacts again on the next event; a bot whose
// willingness is exceeded passes.
func (r *BotRunner) React(auctionID string) {
	a, err := r.eng.AuctionStatus(auctionID)
	if err != nil || a.Status != models.AuctionActive {
		return
	}

	prop, err := r.eng.properties.Property(a.PropertyID)
	if err != nil {
		r.log.Errorf("bot: failed to load property %d: %v", a.PropertyID, err)
		return
	}

	for botID, strategy := range r.bots {
		if !a.Eligible[botID] || a.Passed[botID] {
			continue
		}
		if a.CurrentBidderID != nil && *a.CurrentBidderID == botID {
			continue // already winning
		}

		player, err := r.eng.players.Player(botID)
		if err != nil {
			continue
		}
		portfolio, err := r.eng.properties.Portfolio(botID, a.PropertyID)
		if err != nil {
			continue
		}

		d := Decide(a, player, strategy, prop, portfolio, r.eng.cfg.BotIncrement)
		if !d.Bid {
			if err := r.eng.Pass(botID, auctionID); err != nil && !IsKind(err, KindAlreadyEnded) {
				r.log.Warnf("bot %d: pass on %s failed: %v", botID, auctionID, err)
			}
			continue
		}

		err = r.eng.PlaceBid(auctionID, botID, d.Amount)
		switch {
		case err == nil:
			r.log.Infof("bot %d bid %.2f on auction %s (%s)", botID, d.Amount, auctionID, strategy)
			return // one bid per reaction; the bid event re-queues the auction
		case IsKind(err, KindBidTooLow), IsKind(err, KindAlreadyEnded):
			// Raced with another bidder or expiry; nothing to do.
		default:
			r.log.Warnf("bot %d: bid on %s failed: %v", botID, auctionID, err)
		}
	}
}
