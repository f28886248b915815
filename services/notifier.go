package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tycoonhq/tycoon-backend/auction"
	"github.com/tycoonhq/tycoon-backend/utils/logger"
)

// EventNotifier is the engine's outbound sink: every auction event is
// broadcast to the game's websocket room and mirrored to a redis
// pub/sub channel so other processes can tail the stream.
type EventNotifier struct {
	hub *Hub
	rdb *redis.Client // nil when redis is disabled
}

func NewEventNotifier(hub *Hub, rdb *redis.Client) *EventNotifier {
	return &EventNotifier{hub: hub, rdb: rdb}
}

func (n *EventNotifier) Publish(gameID uint, event auction.Event) {
	b, err := json.Marshal(event)
	if err != nil {
		logger.Errorf("[Notifier] failed to marshal %s event: %v", event.Type, err)
		return
	}

	n.hub.BroadcastToGame(gameID, b)

	if n.rdb == nil {
		return
	}
	channel := fmt.Sprintf("game:%d:events", gameID)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.rdb.Publish(ctx, channel, b).Err(); err != nil {
		logger.Warnf("[Notifier] redis publish to %s failed: %v", channel, err)
	}
}
