package auction

import "github.com/tycoonhq/tycoon-backend/models"

// ValidateBid is the pure bid rule-checker. It inspects an auction
// snapshot and a player snapshot and never touches shared state, so the
// engine can call it inside the per-auction critical section and tests
// can call it with literals.
//
// Rules: the first bid must be >= the starting bid, every later bid
// strictly greater than the current bid, and the bidder's balance must
// cover the amount.
func ValidateBid(a *Auction, player PlayerSnapshot, amount float64) error {
	if a == nil {
		return newError(KindNotFound, "auction not found")
	}

	switch a.Status {
	case models.AuctionActive:
	case models.AuctionCompleted, models.AuctionCancelled:
		return newError(KindAlreadyEnded, "auction %s already ended", a.ID)
	default:
		return newError(KindNotActive, "auction %s is not active", a.ID)
	}

	if !a.Eligible[player.ID] {
		return newError(KindNotEligible, "player %d is not eligible for auction %s", player.ID, a.ID)
	}
	if a.Passed[player.ID] {
		return newError(KindAlreadyPassed, "player %d already passed in auction %s", player.ID, a.ID)
	}

	if a.HasBid() {
		if amount <= a.CurrentBid {
			return newError(KindBidTooLow, "bid %.2f must exceed current bid %.2f", amount, a.CurrentBid)
		}
	} else if amount < a.StartingBid {
		return newError(KindBidTooLow, "bid %.2f is below starting bid %.2f", amount, a.StartingBid)
	}

	if player.Balance < amount {
		return newError(KindInsufficientFunds, "player %d balance %.2f cannot cover bid %.2f", player.ID, player.Balance, amount)
	}

	return nil
}
