package services

import (
	"encoding/json"
	"sync"

	"github.com/addisbingo/bingo-backend/utils/logger"
	"github.com/gorilla/websocket"
)

// Client is one websocket connection watching a session.
type Client struct {
	telegramID int64
	conn       *websocket.Conn
	hub        *Hub
	dir        *Directory
	code       string
	send       chan []byte
	once       sync.Once
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.send)
		c.conn.Close()
	})
}

// --------------------
// Client read/write pumps
// --------------------
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c.telegramID)
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Infof("[Client %d] disconnected normally", c.telegramID)
			} else {
				logger.Warnf("[Client %d] read error: %v", c.telegramID, err)
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) handleMessage(msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[Client %d] recovered from panic: %v", c.telegramID, r)
		}
	}()

	var data map[string]any
	if err := json.Unmarshal(msg, &data); err != nil {
		logger.Warnf("[Client %d] invalid message: %v", c.telegramID, err)
		return
	}

	switch data["action"] {
	case "mark":
		numberFloat, ok := data["number"].(float64)
		if !ok {
			logger.Warnf("[Client %d] invalid number: %v", c.telegramID, data["number"])
			return
		}
		if marked, _ := c.dir.Mark(c.code, c.telegramID, int(numberFloat)); !marked {
			logger.Debugf("[Client %d] illegal mark %d on %s", c.telegramID, int(numberFloat), c.code)
		}
	case "bingo":
		_, won, err := c.dir.Claim(c.code, c.telegramID)
		if err != nil {
			logger.Warnf("[Client %d] claim on %s: %v", c.telegramID, c.code, err)
			return
		}
		if !won {
			c.hub.notify(c.telegramID, "No bingo yet. Keep playing!")
		}
	default:
		logger.Warnf("[Client %d] unknown action: %v", c.telegramID, data["action"])
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Warnf("[Client %d] write error: %v", c.telegramID, err)
			return
		}
	}
}
