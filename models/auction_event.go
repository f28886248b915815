package models

import "time"

// AuctionEvent is one row of the append-only per-auction event log.
type AuctionEvent struct {
	ID        string    `gorm:"primaryKey" json:"id"` // uuid
	AuctionID string    `gorm:"index" json:"auction_id"`
	Type      string    `json:"type"`
	PlayerID  *uint     `json:"player_id,omitempty"`
	Amount    *float64  `json:"amount,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
