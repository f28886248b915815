package services

import (
	"context"

	"github.com/tycoonhq/tycoon-backend/auction"
	"github.com/tycoonhq/tycoon-backend/config"
	"github.com/tycoonhq/tycoon-backend/utils/logger"
)

var (
	Engine  *auction.Engine
	GameHub *Hub
	Bots    *auction.BotRunner
	Store   *AuctionStore
)

// InitAuctionService wires the auction engine to its collaborators,
// restores live auctions from the database, and starts the recovery
// sweeper and the bot runner.
func InitAuctionService(ctx context.Context, cfg config.AuctionConfig) {
	GameHub = NewHub()
	Store = NewAuctionStore(config.DB)

	players := NewPlayerService(config.DB)
	Engine = auction.NewEngine(
		cfg,
		Store,
		players,
		NewPropertyService(config.DB),
		NewLedgerService(config.DB),
		NewEventNotifier(GameHub, config.Redis),
		logger.Log,
	)

	if err := Engine.Restore(); err != nil {
		logger.Errorf("[Init] failed to restore auctions: %v", err)
	}
	go Engine.RunSweeper(ctx)

	strategies, err := players.BotStrategies()
	if err != nil {
		logger.Errorf("[Init] failed to load bot strategies: %v", err)
		strategies = map[uint]auction.Strategy{}
	}
	Bots = auction.NewBotRunner(Engine, strategies, logger.Log)
	go Bots.Run(ctx)

	logger.Infof("[Init] auction service started (%d bots)", len(strategies))
}
