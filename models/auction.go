package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuctionType string

const (
	AuctionStandard    AuctionType = "standard"
	AuctionForeclosure AuctionType = "foreclosure"
	AuctionEmergency   AuctionType = "emergency"
)

type AuctionStatus string

const (
	AuctionPending   AuctionStatus = "pending"
	AuctionActive    AuctionStatus = "active"
	AuctionCompleted AuctionStatus = "completed"
	AuctionCancelled AuctionStatus = "cancelled"
)

// Auction is the persisted snapshot of one auction. The in-memory
// representation in the auction package is authoritative while the
// auction is live; this row is updated on every committed mutation
// and retained read-only after the terminal transition.
type Auction struct {
	ID              string        `gorm:"primaryKey" json:"id"` // uuid
	GameID          uint          `gorm:"index" json:"game_id"`
	PropertyID      uint          `gorm:"index" json:"property_id"`
	Type            AuctionType   `json:"type"`
	Status          AuctionStatus `gorm:"index" json:"status"`
	StartingBid     float64       `json:"starting_bid"`
	CurrentBid      float64       `json:"current_bid"`
	CurrentBidderID *uint         `json:"current_bidder_id,omitempty"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	LastBidTime     *time.Time    `json:"last_bid_time,omitempty"`
	EligiblePlayers datatypes.JSON `json:"eligible_players"` // []uint
	PassedPlayers   datatypes.JSON `json:"passed_players"`   // []uint
	OriginalOwnerID *uint         `json:"original_owner_id,omitempty"`
	FinalPrice      *float64      `json:"final_price,omitempty"`
	EndReason       string        `json:"end_reason,omitempty"`
	Settled         bool          `gorm:"default:false" json:"settled"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
