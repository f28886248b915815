package models

import "time"

type Player struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GameID    uint      `gorm:"index" json:"game_id"`
	Name      string    `json:"name"`
	Balance   float64   `json:"balance"`
	IsBot     bool      `json:"is_bot"`
	Strategy  string    `json:"strategy,omitempty"` // conservative | default | aggressive | strategic
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
