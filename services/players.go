package services

import (
	"gorm.io/gorm"

	"github.com/tycoonhq/tycoon-backend/auction"
	"github.com/tycoonhq/tycoon-backend/models"
)

// PlayerService feeds bidder snapshots and game rosters to the engine.
type PlayerService struct {
	db *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{db: db}
}

func (s *PlayerService) Player(id uint) (auction.PlayerSnapshot, error) {
	var p models.Player
	if err := s.db.First(&p, id).Error; err != nil {
		return auction.PlayerSnapshot{}, err
	}
	return auction.PlayerSnapshot{ID: p.ID, Balance: p.Balance}, nil
}

func (s *PlayerService) ActivePlayers(gameID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.Player{}).
		Where("game_id = ? AND active = ?", gameID, true).
		Pluck("id", &ids).Error
	return ids, err
}

// BotStrategies returns the registered bot players of every game.
func (s *PlayerService) BotStrategies() (map[uint]auction.Strategy, error) {
	var bots []models.Player
	if err := s.db.Where("is_bot = ?", true).Find(&bots).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]auction.Strategy, len(bots))
	for _, b := range bots {
		strategy := auction.Strategy(b.Strategy)
		if strategy == "" {
			strategy = auction.StrategyDefault
		}
		out[b.ID] = strategy
	}
	return out, nil
}
