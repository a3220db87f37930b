package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/addisbingo/bingo-backend/config"
	"github.com/addisbingo/bingo-backend/routes"
	"github.com/addisbingo/bingo-backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// setupRouter initializes Gin routes and middleware
func setupRouter(dir *services.Directory) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup REST routes
	routes.SetupRoutes(r, dir)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	// WebSocket session endpoint
	r.GET("/ws/:code", services.HandleWebSocket(dir))

	return r
}

func main() {
	// Load env variables
	settings := config.Load()

	// Connect to database
	db := config.SetupDatabase(settings.DatabaseURL)

	// Build the session directory with its collaborators
	dir := services.NewDirectory(services.DirectoryConfig{
		MinPlayers:        settings.MinPlayers,
		DefaultMaxPlayers: settings.MaxPlayers,
		SeedCards:         settings.SeedCards,
		FourCorners:       settings.FourCorners,
		CallInterval:      settings.CallInterval,
		SweepInterval:     settings.SweepInterval,
		WaitingGrace:      settings.WaitingGrace,
		ActiveGrace:       settings.ActiveGrace,
	}, services.NewGormSnapshotStore(db), services.NewGormLedger(db))

	// Drain live sessions on shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("[INFO] shutting down, draining sessions")
		dir.Close()
		os.Exit(0)
	}()

	router := setupRouter(dir)

	log.Printf("🚀 Bingo Backend server starting on port %s", settings.Port)
	if err := router.Run(":" + settings.Port); err != nil {
		log.Fatalf("[FATAL] Failed to start server: %v", err)
	}
}
