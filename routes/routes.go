package routes

import (
	"github.com/addisbingo/bingo-backend/controllers"
	"github.com/addisbingo/bingo-backend/services"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, dir *services.Directory) {
	api := r.Group("/api")

	// ----------------------
	// User routes
	// ----------------------
	api.POST("/users", controllers.RegisterUser)        // Register user
	api.GET("/users/:telegram_id", controllers.GetUser) // Get user by Telegram ID

	// ----------------------
	// Session routes
	// ----------------------
	sessions := controllers.NewSessionController(dir)
	api.POST("/sessions", sessions.CreateSession)                    // Open a game
	api.GET("/sessions", sessions.ListSessions)                      // List live games
	api.GET("/sessions/:code", sessions.GetSession)                  // Game snapshot
	api.POST("/sessions/:code/join", sessions.Join)                  // Join a game
	api.POST("/sessions/:code/call", sessions.CallNext)              // Call next number
	api.POST("/sessions/:code/mark", sessions.Mark)                  // Mark a number
	api.POST("/sessions/:code/bingo", sessions.Claim)                // Claim bingo
	api.GET("/sessions/:code/card/:telegram_id", sessions.GetCard)   // Player cartela

	// ----------------------
	// Transaction routes
	// ----------------------
	api.GET("/transactions/:telegram_id", controllers.ListTransactions) // Ledger history
}
