package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/tycoonhq/tycoon-backend/controllers"
)

func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	// ----------------------
	// Game / board routes
	// ----------------------
	api.POST("/games", controllers.CreateGame)
	api.GET("/games/:id/properties", controllers.ListProperties)
	api.POST("/properties", controllers.CreateProperty)

	// ----------------------
	// Player routes
	// ----------------------
	api.POST("/players", controllers.RegisterPlayer)
	api.GET("/players/:id", controllers.GetPlayer)
	api.POST("/deposit", controllers.Deposit)

	// ----------------------
	// Auction routes
	// ----------------------
	api.POST("/games/:id/auctions", controllers.StartAuction)
	api.GET("/games/:id/auctions", controllers.ListActiveAuctions)
	api.POST("/games/:id/auctions/sequential", controllers.StartSequentialAuctions)
	api.GET("/auctions/:id", controllers.GetAuction)
	api.GET("/auctions/:id/events", controllers.GetAuctionEvents)
	api.POST("/auctions/:id/bids", controllers.PlaceBid)
	api.POST("/auctions/:id/pass", controllers.Pass)
	api.POST("/auctions/:id/cancel", controllers.CancelAuction)

	// gin cannot mix a static segment with :id under /auctions, so the
	// stale-auction sweep lives under /maintenance.
	api.POST("/maintenance/stale-auctions", controllers.CleanupStaleAuctions)
}
