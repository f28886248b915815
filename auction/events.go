package auction

import "time"

const (
	EventStarted             = "auction_started"
	EventBidPlaced           = "auction_bid_placed"
	EventTimerExtended       = "auction_timer_extended"
	EventPlayerPassed        = "auction_player_passed"
	EventEnded               = "auction_ended"
	EventCancelled           = "auction_cancelled"
	EventSequentialNext      = "sequential_auction_next"
	EventSequentialCompleted = "sequential_auction_completed"
)

// Event is the payload broadcast to the game room for every auction
// transition. It carries enough state for a client to render without a
// follow-up query.
type Event struct {
	Type            string     `json:"type"`
	AuctionID       string     `json:"auction_id,omitempty"`
	GameID          uint       `json:"game_id"`
	PropertyID      uint       `json:"property_id,omitempty"`
	PropertyName    string     `json:"property_name,omitempty"`
	AuctionType     string     `json:"auction_type,omitempty"`
	Status          string     `json:"status,omitempty"`
	StartingBid     float64    `json:"starting_bid,omitempty"`
	CurrentBid      float64    `json:"current_bid,omitempty"`
	CurrentBidderID *uint      `json:"current_bidder_id,omitempty"`
	PlayerID        *uint      `json:"player_id,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	FinalPrice      *float64   `json:"final_price,omitempty"`
	WinnerID        *uint      `json:"winner_id,omitempty"`
	Reason          string     `json:"reason,omitempty"`

	// Sequential auction fields.
	SequenceID string `json:"sequence_id,omitempty"`
	Position   int    `json:"position,omitempty"`
	Remaining  int    `json:"remaining,omitempty"`
}

func (e *Engine) eventFor(a *Auction, eventType string) Event {
	ev := Event{
		Type:            eventType,
		AuctionID:       a.ID,
		GameID:          a.GameID,
		PropertyID:      a.PropertyID,
		AuctionType:     string(a.Type),
		Status:          string(a.Status),
		StartingBid:     a.StartingBid,
		CurrentBid:      a.CurrentBid,
		CurrentBidderID: a.CurrentBidderID,
	}
	end := a.EndTime
	ev.EndTime = &end
	if prop, err := e.properties.Property(a.PropertyID); err == nil {
		ev.PropertyName = prop.Name
	}
	return ev
}
