package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tycoonhq/tycoon-backend/auction"
	"github.com/tycoonhq/tycoon-backend/models"
)

// AuctionStore persists auction rows and the append-only event log.
type AuctionStore struct {
	db *gorm.DB
}

func NewAuctionStore(db *gorm.DB) *AuctionStore {
	return &AuctionStore{db: db}
}

func (s *AuctionStore) Save(a *auction.Auction) error {
	row, err := toAuctionRow(a)
	if err != nil {
		return err
	}
	return s.db.Save(row).Error
}

func (s *AuctionStore) Get(id string) (*auction.Auction, error) {
	var row models.Auction
	if err := s.db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return fromAuctionRow(&row)
}

func (s *AuctionStore) Active(gameID uint) ([]*auction.Auction, error) {
	var rows []models.Auction
	if err := s.db.Where("game_id = ? AND status = ?", gameID, models.AuctionActive).Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromAuctionRows(rows)
}

func (s *AuctionStore) AllActive() ([]*auction.Auction, error) {
	var rows []models.Auction
	if err := s.db.Where("status = ?", models.AuctionActive).Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromAuctionRows(rows)
}

func (s *AuctionStore) UnsettledCompleted() ([]*auction.Auction, error) {
	var rows []models.Auction
	if err := s.db.Where("status = ? AND settled = ?", models.AuctionCompleted, false).Find(&rows).Error; err != nil {
		return nil, err
	}
	return fromAuctionRows(rows)
}

func (s *AuctionStore) MarkSettled(id string) error {
	return s.db.Model(&models.Auction{}).Where("id = ?", id).Update("settled", true).Error
}

func (s *AuctionStore) AppendEvent(auctionID, eventType string, playerID *uint, amount *float64, detail string) error {
	return s.db.Create(&models.AuctionEvent{
		ID:        uuid.NewString(),
		AuctionID: auctionID,
		Type:      eventType,
		PlayerID:  playerID,
		Amount:    amount,
		Detail:    detail,
		CreatedAt: time.Now(),
	}).Error
}

// Events returns the event log of one auction, oldest first.
func (s *AuctionStore) Events(auctionID string) ([]models.AuctionEvent, error) {
	var rows []models.AuctionEvent
	err := s.db.Where("auction_id = ?", auctionID).Order("created_at asc").Find(&rows).Error
	return rows, err
}

func toAuctionRow(a *auction.Auction) (*models.Auction, error) {
	eligible, err := json.Marshal(setToSlice(a.Eligible))
	if err != nil {
		return nil, err
	}
	passed, err := json.Marshal(setToSlice(a.Passed))
	if err != nil {
		return nil, err
	}

	return &models.Auction{
		ID:              a.ID,
		GameID:          a.GameID,
		PropertyID:      a.PropertyID,
		Type:            a.Type,
		Status:          a.Status,
		StartingBid:     a.StartingBid,
		CurrentBid:      a.CurrentBid,
		CurrentBidderID: a.CurrentBidderID,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		LastBidTime:     a.LastBidTime,
		EligiblePlayers: datatypes.JSON(eligible),
		PassedPlayers:   datatypes.JSON(passed),
		OriginalOwnerID: a.OriginalOwnerID,
		FinalPrice:      a.FinalPrice,
		EndReason:       a.EndReason,
		Settled:         a.Settled,
	}, nil
}

func fromAuctionRow(row *models.Auction) (*auction.Auction, error) {
	eligible, err := sliceToSet(row.EligiblePlayers)
	if err != nil {
		return nil, err
	}
	passed, err := sliceToSet(row.PassedPlayers)
	if err != nil {
		return nil, err
	}

	return &auction.Auction{
		ID:              row.ID,
		GameID:          row.GameID,
		PropertyID:      row.PropertyID,
		Type:            row.Type,
		Status:          row.Status,
		StartingBid:     row.StartingBid,
		CurrentBid:      row.CurrentBid,
		CurrentBidderID: row.CurrentBidderID,
		StartTime:       row.StartTime,
		EndTime:         row.EndTime,
		LastBidTime:     row.LastBidTime,
		Eligible:        eligible,
		Passed:          passed,
		OriginalOwnerID: row.OriginalOwnerID,
		FinalPrice:      row.FinalPrice,
		EndReason:       row.EndReason,
		Settled:         row.Settled,
	}, nil
}

func fromAuctionRows(rows []models.Auction) ([]*auction.Auction, error) {
	out := make([]*auction.Auction, 0, len(rows))
	for i := range rows {
		a, err := fromAuctionRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func setToSlice(set map[uint]bool) []uint {
	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func sliceToSet(raw datatypes.JSON) (map[uint]bool, error) {
	set := make(map[uint]bool)
	if len(raw) == 0 {
		return set, nil
	}
	var ids []uint
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
