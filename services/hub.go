package services

import (
	"sync"

	"github.com/tycoonhq/tycoon-backend/utils/logger"
)

// Hub tracks connected clients per game room and fans broadcast
// messages out to them.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uint]map[*Client]bool)}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.gameID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[c.gameID] = room
	}
	room[c] = true
	total := len(room)
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()

	logger.Infof("[Hub] player %d joined game %d room (total=%d)", c.playerID, c.gameID, total)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if room, ok := h.rooms[c.gameID]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, c.gameID)
		}
	}
	h.mu.Unlock()

	c.Close()
}

// BroadcastToGame sends a message to every client in a game room.
// Slow clients get dropped messages, never a blocked broadcast.
func (h *Hub) BroadcastToGame(gameID uint, msg []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.rooms[gameID]))
	for c := range h.rooms[gameID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			logger.Warnf("[Hub] dropping msg to player %d in game %d", c.playerID, c.gameID)
		}
	}
}
