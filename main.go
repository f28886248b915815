package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/tycoonhq/tycoon-backend/config"
	"github.com/tycoonhq/tycoon-backend/routes"
	"github.com/tycoonhq/tycoon-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// setupRouter initializes Gin routes and middleware
func setupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup REST routes
	routes.SetupRoutes(r)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket game-room endpoint
	r.GET("/ws/:game_id", services.HandleWebSocket)

	return r
}

func main() {
	// Load env variables
	config.InitEnv()

	// Connect to database and redis
	config.SetupDatabase()
	config.SetupRedis()

	// Start the auction engine, recovery sweeper, and bot runner
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	services.InitAuctionService(ctx, config.LoadAuctionConfig())

	router := setupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("🚀 Tycoon backend starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
