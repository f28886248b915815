package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tycoonhq/tycoon-backend/config"
	"github.com/tycoonhq/tycoon-backend/models"
)

// RegisterPlayer adds a player (human or bot) to a game.
func RegisterPlayer(c *gin.Context) {
	var player models.Player
	if err := c.ShouldBindJSON(&player); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	player.Active = true

	if err := config.DB.Create(&player).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create player"})
		return
	}

	c.JSON(http.StatusCreated, player)
}

// GetPlayer fetches a player by id.
func GetPlayer(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
		return
	}

	var player models.Player
	if err := config.DB.First(&player, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, player)
}

// Deposit credits a player's wallet.
func Deposit(c *gin.Context) {
	var req struct {
		PlayerID uint    `json:"player_id" binding:"required"`
		Amount   float64 `json:"amount" binding:"required,gt=0"`
		Memo     string  `json:"memo" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var player models.Player
	if err := tx.First(&player, req.PlayerID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
		return
	}

	player.Balance += req.Amount
	if err := tx.Save(&player).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balance"})
		return
	}

	record := models.Transaction{
		PayeeID:      player.ID,
		Type:         models.DepositTransaction,
		Amount:       req.Amount,
		Memo:         req.Memo,
		BalanceAfter: player.Balance,
	}
	if err := tx.Create(&record).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusConflict, gin.H{"error": "Duplicate or invalid deposit memo"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit deposit"})
		return
	}

	c.JSON(http.StatusCreated, record)
}
