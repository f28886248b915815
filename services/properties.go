package services

import (
	"gorm.io/gorm"

	"github.com/tycoonhq/tycoon-backend/auction"
	"github.com/tycoonhq/tycoon-backend/models"
)

// PropertyService is the ownership collaborator.
type PropertyService struct {
	db *gorm.DB
}

func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{db: db}
}

func (s *PropertyService) Property(id uint) (auction.PropertySnapshot, error) {
	var p models.Property
	if err := s.db.First(&p, id).Error; err != nil {
		return auction.PropertySnapshot{}, err
	}
	return auction.PropertySnapshot{
		ID:         p.ID,
		GameID:     p.GameID,
		Name:       p.Name,
		Kind:       p.Kind,
		ColorGroup: p.ColorGroup,
		ListPrice:  p.ListPrice,
		OwnerID:    p.OwnerID,
		InAuction:  p.InAuction,
	}, nil
}

func (s *PropertyService) AssignOwner(propertyID, playerID uint) error {
	return s.db.Model(&models.Property{}).
		Where("id = ?", propertyID).
		Update("owner_id", playerID).Error
}

func (s *PropertyService) SetInAuction(propertyID uint, inAuction bool) error {
	return s.db.Model(&models.Property{}).
		Where("id = ?", propertyID).
		Update("in_auction", inAuction).Error
}

// Portfolio summarizes a player's holdings relative to one property,
// for the strategic bot valuation.
func (s *PropertyService) Portfolio(playerID, propertyID uint) (auction.PortfolioSnapshot, error) {
	var target models.Property
	if err := s.db.First(&target, propertyID).Error; err != nil {
		return auction.PortfolioSnapshot{}, err
	}

	var pf auction.PortfolioSnapshot

	var railroads int64
	if err := s.db.Model(&models.Property{}).
		Where("game_id = ? AND owner_id = ? AND kind = ?", target.GameID, playerID, models.PropertyRailroad).
		Count(&railroads).Error; err != nil {
		return pf, err
	}
	pf.RailroadsOwned = int(railroads)

	var utilities int64
	if err := s.db.Model(&models.Property{}).
		Where("game_id = ? AND owner_id = ? AND kind = ?", target.GameID, playerID, models.PropertyUtility).
		Count(&utilities).Error; err != nil {
		return pf, err
	}
	pf.OwnsUtility = utilities > 0

	if target.ColorGroup != "" {
		var groupSize, groupOwned int64
		if err := s.db.Model(&models.Property{}).
			Where("game_id = ? AND color_group = ?", target.GameID, target.ColorGroup).
			Count(&groupSize).Error; err != nil {
			return pf, err
		}
		if err := s.db.Model(&models.Property{}).
			Where("game_id = ? AND color_group = ? AND owner_id = ?", target.GameID, target.ColorGroup, playerID).
			Count(&groupOwned).Error; err != nil {
			return pf, err
		}
		pf.GroupSize = int(groupSize)
		pf.GroupOwned = int(groupOwned)
	}

	return pf, nil
}
