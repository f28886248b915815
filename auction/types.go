package auction

import (
	"time"

	"github.com/tycoonhq/tycoon-backend/models"
)

// Auction is the in-memory working state of one auction. It is owned by
// the engine and only ever mutated inside the per-auction critical
// section; copies handed out through snapshots are safe to read freely.
type Auction struct {
	ID              string               `json:"id"`
	GameID          uint                 `json:"game_id"`
	PropertyID      uint                 `json:"property_id"`
	Type            models.AuctionType   `json:"type"`
	Status          models.AuctionStatus `json:"status"`
	StartingBid     float64              `json:"starting_bid"`
	CurrentBid      float64              `json:"current_bid"`
	CurrentBidderID *uint                `json:"current_bidder_id,omitempty"`
	StartTime       time.Time            `json:"start_time"`
	EndTime         time.Time            `json:"end_time"`
	LastBidTime     *time.Time           `json:"last_bid_time,omitempty"`
	Eligible        map[uint]bool        `json:"eligible_players"`
	Passed          map[uint]bool        `json:"passed_players"`
	OriginalOwnerID *uint                `json:"original_owner_id,omitempty"`
	FinalPrice      *float64             `json:"final_price,omitempty"`
	EndReason       string               `json:"end_reason,omitempty"`
	Settled         bool                 `json:"settled"`
}

// HasBid reports whether a first valid bid has landed.
func (a *Auction) HasBid() bool { return a.CurrentBidderID != nil }

// Remaining returns the eligible players who have not passed.
func (a *Auction) Remaining() []uint {
	out := make([]uint, 0, len(a.Eligible))
	for id := range a.Eligible {
		if !a.Passed[id] {
			out = append(out, id)
		}
	}
	return out
}

// Terminal reports whether the auction reached completed or cancelled.
func (a *Auction) Terminal() bool {
	return a.Status == models.AuctionCompleted || a.Status == models.AuctionCancelled
}

// Clone deep-copies the auction, including the player sets.
func (a *Auction) Clone() *Auction {
	c := *a
	c.Eligible = make(map[uint]bool, len(a.Eligible))
	for id, v := range a.Eligible {
		c.Eligible[id] = v
	}
	c.Passed = make(map[uint]bool, len(a.Passed))
	for id, v := range a.Passed {
		c.Passed[id] = v
	}
	if a.CurrentBidderID != nil {
		id := *a.CurrentBidderID
		c.CurrentBidderID = &id
	}
	if a.OriginalOwnerID != nil {
		id := *a.OriginalOwnerID
		c.OriginalOwnerID = &id
	}
	if a.LastBidTime != nil {
		t := *a.LastBidTime
		c.LastBidTime = &t
	}
	if a.FinalPrice != nil {
		p := *a.FinalPrice
		c.FinalPrice = &p
	}
	return &c
}

// PlayerSnapshot is the slice of player state bid validation needs.
type PlayerSnapshot struct {
	ID      uint
	Balance float64
}

// PropertySnapshot is the slice of property state the engine and the
// bot strategies need.
type PropertySnapshot struct {
	ID         uint
	GameID     uint
	Name       string
	Kind       models.PropertyKind
	ColorGroup string
	ListPrice  float64
	OwnerID    *uint
	InAuction  bool
}

// PortfolioSnapshot summarizes a player's holdings relative to one
// property, feeding the strategic bot valuation.
type PortfolioSnapshot struct {
	RailroadsOwned int  // railroads the player already owns in this game
	OwnsUtility    bool // player owns at least one utility
	GroupOwned     int  // properties the player owns in the target's color group
	GroupSize      int  // total properties in that color group
}

// Collaborator boundaries. The engine drives these and never depends on
// their concrete implementations.

// Ledger moves funds between players; payer/payee id 0 is the bank.
// Transfer must be idempotent per memo.
type Ledger interface {
	Transfer(payerID, payeeID uint, amount float64, memo string) error
}

// PropertyStore is the ownership collaborator.
type PropertyStore interface {
	Property(id uint) (PropertySnapshot, error)
	AssignOwner(propertyID, playerID uint) error
	SetInAuction(propertyID uint, inAuction bool) error
	Portfolio(playerID, propertyID uint) (PortfolioSnapshot, error)
}

// PlayerStore supplies bidder snapshots and game rosters.
type PlayerStore interface {
	Player(id uint) (PlayerSnapshot, error)
	ActivePlayers(gameID uint) ([]uint, error)
}

// Store persists auction rows and the append-only event log.
type Store interface {
	Save(a *Auction) error
	Get(id string) (*Auction, error)
	Active(gameID uint) ([]*Auction, error)
	AllActive() ([]*Auction, error)
	UnsettledCompleted() ([]*Auction, error)
	MarkSettled(id string) error
	AppendEvent(auctionID, eventType string, playerID *uint, amount *float64, detail string) error
}

// Notifier is the outbound event sink (websocket room + redis mirror).
type Notifier interface {
	Publish(gameID uint, event Event)
}
