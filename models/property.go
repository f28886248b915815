package models

import "time"

type PropertyKind string

const (
	PropertyStreet   PropertyKind = "street"
	PropertyRailroad PropertyKind = "railroad"
	PropertyUtility  PropertyKind = "utility"
)

type Property struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	GameID     uint         `gorm:"index" json:"game_id"`
	Name       string       `json:"name"`
	Kind       PropertyKind `gorm:"default:street" json:"kind"`
	ColorGroup string       `json:"color_group,omitempty"` // empty for railroads/utilities
	ListPrice  float64      `json:"list_price"`
	OwnerID    *uint        `json:"owner_id,omitempty"`
	InAuction  bool         `gorm:"default:false" json:"in_auction"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
