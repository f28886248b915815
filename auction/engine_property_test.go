package auction

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/tycoonhq/tycoon-backend/models"
)

// Property: current_bid never decreases, and end_time never moves
// backwards, no matter what mix of valid and invalid bids arrives.
func TestBidMonotonicityProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		env := newTestEnv()
		env.players.setBalance(playerA, 1e9)
		env.players.setBalance(playerB, 1e9)
		env.players.setBalance(playerC, 1e9)

		a, err := env.eng.StartAuction(testGame, testProperty, models.AuctionStandard, StartOptions{})
		if err != nil {
			t.Fatalf("StartAuction: %v", err)
		}

		bidders := []uint{playerA, playerB, playerC}
		numBids := rapid.IntRange(1, 40).Draw(t, "numBids")

		prevBid := 0.0
		prevEnd := a.EndTime
		for i := 0; i < numBids; i++ {
			bidder := bidders[rapid.IntRange(0, 2).Draw(t, "bidder")]
			amount := rapid.Float64Range(1, 2000).Draw(t, "amount")

			bidErr := env.eng.PlaceBid(a.ID, bidder, amount)

			cur, err := env.eng.AuctionStatus(a.ID)
			if err != nil {
				t.Fatalf("AuctionStatus: %v", err)
			}
			if bidErr == nil {
				if cur.CurrentBid != amount {
					t.Fatalf("accepted bid %.2f but current_bid = %.2f", amount, cur.CurrentBid)
				}
				if cur.CurrentBid <= prevBid && prevBid > 0 {
					t.Fatalf("current_bid regressed: %.2f after %.2f", cur.CurrentBid, prevBid)
				}
				prevBid = cur.CurrentBid
			} else if cur.CurrentBid != prevBid && cur.HasBid() {
				t.Fatalf("rejected bid mutated current_bid: %.2f -> %.2f", prevBid, cur.CurrentBid)
			}
			if cur.EndTime.Before(prevEnd) {
				t.Fatalf("end_time moved backwards: %v -> %v", prevEnd, cur.EndTime)
			}
			prevEnd = cur.EndTime
		}
	})
}

// Property: a bid at or below the current high bid is always rejected
// as bid_too_low, regardless of the bidder's balance.
func TestLowBidAlwaysRejectedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		env := newTestEnv()
		env.players.setBalance(playerA, 1e9)
		env.players.setBalance(playerB, 1e9)

		a, err := env.eng.StartAuction(testGame, testProperty, models.AuctionStandard, StartOptions{})
		if err != nil {
			t.Fatalf("StartAuction: %v", err)
		}

		high := rapid.Float64Range(a.StartingBid, a.StartingBid+1000).Draw(t, "high")
		if err := env.eng.PlaceBid(a.ID, playerA, high); err != nil {
			t.Fatalf("opening bid: %v", err)
		}

		low := rapid.Float64Range(0, high).Draw(t, "low")
		err = env.eng.PlaceBid(a.ID, playerB, low)
		if got := KindOf(err); got != KindBidTooLow {
			t.Fatalf("bid %.2f vs current %.2f: kind = %q, want %q", low, high, got, KindBidTooLow)
		}
	})
}

// Property: an auction makes exactly one terminal transition no matter
// how many End/Cancel calls race against it, and exactly one terminal
// event is published.
func TestSingleTerminalTransitionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		env := newTestEnv()
		a, err := env.eng.StartAuction(testGame, testProperty, models.AuctionStandard, StartOptions{})
		if err != nil {
			t.Fatalf("StartAuction: %v", err)
		}
		if rapid.Bool().Draw(t, "withBid") {
			if err := env.eng.PlaceBid(a.ID, playerA, a.StartingBid+25); err != nil {
				t.Fatalf("PlaceBid: %v", err)
			}
		}

		numCalls := rapid.IntRange(2, 10).Draw(t, "numCalls")
		for i := 0; i < numCalls; i++ {
			if rapid.Bool().Draw(t, "cancel") {
				_ = env.eng.CancelAuction(a.ID, "retracted")
			} else {
				_ = env.eng.EndAuction(a.ID, "expired")
			}
		}

		final, err := env.eng.AuctionStatus(a.ID)
		if err != nil {
			t.Fatalf("AuctionStatus: %v", err)
		}
		if !final.Terminal() {
			t.Fatal("auction still active after terminal calls")
		}

		terminal := len(env.sink.byType(EventEnded)) + len(env.sink.byType(EventCancelled))
		if terminal != 1 {
			t.Fatalf("terminal events = %d, want exactly 1", terminal)
		}
		if env.ledger.count() > 1 {
			t.Fatalf("settlement ran %d times", env.ledger.count())
		}
	})
}
