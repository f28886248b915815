package services

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/tycoonhq/tycoon-backend/config"
	"github.com/tycoonhq/tycoon-backend/models"
	"github.com/tycoonhq/tycoon-backend/utils/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket joins a player to their game's event room.
func HandleWebSocket(c *gin.Context) {
	gameID64, err := strconv.ParseUint(c.Param("game_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}
	gameID := uint(gameID64)

	playerIDStr := c.Query("player")
	if playerIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing player query param"})
		return
	}
	playerID64, err := strconv.ParseUint(playerIDStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
		return
	}

	var player models.Player
	if err := config.DB.Where("id = ? AND game_id = ?", playerID64, gameID).First(&player).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "player not in game"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("[WS] upgrade error: %v", err)
		return
	}

	client := &Client{
		playerID: player.ID,
		gameID:   gameID,
		conn:     conn,
		hub:      GameHub,
		send:     make(chan []byte, 32),
	}
	GameHub.addClient(client)
}
