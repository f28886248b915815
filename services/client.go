package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tycoonhq/tycoon-backend/auction"
	"github.com/tycoonhq/tycoon-backend/utils/logger"
)

type Client struct {
	playerID uint
	gameID   uint
	conn     *websocket.Conn
	hub      *Hub
	send     chan []byte
	once     sync.Once
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

type clientCommand struct {
	Action    string  `json:"action"` // place_bid | pass
	AuctionID string  `json:"auction_id"`
	Amount    float64 `json:"amount"`
}

// --------------------
// Client read/write pumps
// --------------------
func (c *Client) readPump() {
	defer func() {
		c.hub.removeClient(c)
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Infof("[Client %d] disconnected normally", c.playerID)
			} else {
				logger.Warnf("[Client %d] read error: %v", c.playerID, err)
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			logger.Warnf("[Client %d] invalid message: %v", c.playerID, err)
			continue
		}

		switch cmd.Action {
		case "place_bid":
			if err := Engine.PlaceBid(cmd.AuctionID, c.playerID, cmd.Amount); err != nil {
				c.notifyError(cmd.AuctionID, err)
			}
		case "pass":
			if err := Engine.Pass(c.playerID, cmd.AuctionID); err != nil {
				c.notifyError(cmd.AuctionID, err)
			}
		default:
			logger.Warnf("[Client %d] unknown action: %q", c.playerID, cmd.Action)
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Warnf("[Client %d] write error: %v", c.playerID, err)
			return
		}
	}
}

func (c *Client) notifyError(auctionID string, err error) {
	payload := map[string]string{
		"type":       "error",
		"auction_id": auctionID,
		"kind":       string(auction.KindOf(err)),
		"message":    err.Error(),
	}
	b, _ := json.Marshal(payload)

	select {
	case c.send <- b:
	default:
		logger.Warnf("[Client %d] dropping error notification", c.playerID)
	}
}
