package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tycoonhq/tycoon-backend/auction"
	"github.com/tycoonhq/tycoon-backend/models"
	"github.com/tycoonhq/tycoon-backend/services"
	"github.com/tycoonhq/tycoon-backend/utils/logger"
)

func statusForKind(err error) int {
	switch auction.KindOf(err) {
	case auction.KindNotFound:
		return http.StatusNotFound
	case auction.KindBidTooLow, auction.KindInvalid, auction.KindInsufficientFunds:
		return http.StatusBadRequest
	case auction.KindNotActive, auction.KindAlreadyEnded, auction.KindNotEligible,
		auction.KindAlreadyPassed, auction.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForKind(err), gin.H{
		"error": err.Error(),
		"kind":  string(auction.KindOf(err)),
	})
}

// StartAuction creates an auction for a property in a game.
func StartAuction(c *gin.Context) {
	gameID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	var req struct {
		PropertyID  uint     `json:"property_id" binding:"required"`
		Type        string   `json:"type"`
		StartingBid *float64 `json:"starting_bid"`
		DurationSec *int     `json:"duration_sec"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	typ := models.AuctionType(req.Type)
	switch typ {
	case models.AuctionStandard, models.AuctionForeclosure, models.AuctionEmergency:
	case "":
		typ = models.AuctionStandard
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown auction type"})
		return
	}

	opts := auction.StartOptions{StartingBid: req.StartingBid}
	if req.DurationSec != nil {
		d := time.Duration(*req.DurationSec) * time.Second
		opts.Duration = &d
	}

	a, err := services.Engine.StartAuction(gameID, req.PropertyID, typ, opts)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, a)
}

// PlaceBid submits a bid on an auction.
func PlaceBid(c *gin.Context) {
	auctionID := c.Param("id")

	var req struct {
		PlayerID uint    `json:"player_id" binding:"required"`
		Amount   float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.Engine.PlaceBid(auctionID, req.PlayerID, req.Amount); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "bid accepted", "amount": req.Amount})
}

// Pass withdraws a player from an auction.
func Pass(c *gin.Context) {
	auctionID := c.Param("id")

	var req struct {
		PlayerID uint `json:"player_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.Engine.Pass(req.PlayerID, auctionID); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "passed"})
}

// CancelAuction aborts an active auction.
func CancelAuction(c *gin.Context) {
	auctionID := c.Param("id")

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "cancelled by request"
	}

	if err := services.Engine.CancelAuction(auctionID, req.Reason); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "auction cancelled"})
}

// ListActiveAuctions lists a game's active auctions.
func ListActiveAuctions(c *gin.Context) {
	gameID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	auctions, err := services.Engine.ActiveAuctions(gameID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, auctions)
}

// GetAuction returns one auction, live or archived.
func GetAuction(c *gin.Context) {
	a, err := services.Engine.AuctionStatus(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// GetAuctionEvents returns the append-only event log of an auction.
func GetAuctionEvents(c *gin.Context) {
	events, err := services.Store.Events(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// StartSequentialAuctions queues several properties for consecutive
// auctions.
func StartSequentialAuctions(c *gin.Context) {
	gameID, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	var req struct {
		Properties []auction.QueueItem `json:"properties" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seq, err := auction.StartSequentialAuctions(services.Engine, gameID, req.Properties, logger.Log)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"sequence_id": seq.ID, "properties": len(req.Properties)})
}

// CleanupStaleAuctions force-ends active auctions whose end time passed
// at least age_hours ago (default 24).
func CleanupStaleAuctions(c *gin.Context) {
	ageHours := 24
	if v := c.Query("age_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid age_hours"})
			return
		}
		ageHours = n
	}

	ended, err := services.Engine.CleanupStaleAuctions(time.Duration(ageHours) * time.Hour)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ended": ended})
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	return uint(v), err
}
