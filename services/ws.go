package services

import (
	"net/http"
	"strconv"

	"github.com/addisbingo/bingo-backend/config"
	"github.com/addisbingo/bingo-backend/models"
	"github.com/addisbingo/bingo-backend/utils/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades a connection and attaches it to the session's
// hub. Route: GET /ws/:code?telegram_id=...
func HandleWebSocket(dir *Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")
		h, ok := dir.handle(code)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		telegramIDStr := c.Query("telegram_id")
		if telegramIDStr == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing telegram_id"})
			return
		}
		telegramID, err := strconv.ParseInt(telegramIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
			return
		}

		var user models.User
		if err := config.DB.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warnf("[WS] upgrade error: %v", err)
			return
		}

		client := &Client{
			telegramID: telegramID,
			conn:       conn,
			hub:        h.hub,
			dir:        dir,
			code:       code,
			send:       make(chan []byte, 32),
		}
		h.hub.add(client)

		// push the current state to the newcomer
		h.hub.BroadcastState(h.engine)
	}
}
