package services

import (
	"encoding/json"
	"sync"

	"github.com/addisbingo/bingo-backend/game"
	"github.com/addisbingo/bingo-backend/utils/logger"
)

// wsState is the session state pushed to every connected client after a
// mutation.
type wsState struct {
	Type         string        `json:"type"` // "state"
	Session      game.Snapshot `json:"session"`
	CurrentLabel string        `json:"current_label,omitempty"` // e.g. "B-7"
}

// Hub fans session state out to the websocket clients watching one session.
type Hub struct {
	code string

	mu      sync.RWMutex
	clients map[int64]*Client
}

func NewHub(code string) *Hub {
	return &Hub{
		code:    code,
		clients: make(map[int64]*Client),
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	if old, ok := h.clients[c.telegramID]; ok {
		old.Close() // safe closure
	}
	h.clients[c.telegramID] = c
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()

	logger.Infof("[Hub %s] client %d connected", h.code, c.telegramID)
}

func (h *Hub) remove(telegramID int64) {
	h.mu.Lock()
	if c, ok := h.clients[telegramID]; ok {
		delete(h.clients, telegramID)
		c.Close()
	}
	h.mu.Unlock()
}

// BroadcastState pushes the current snapshot to every client. Slow clients
// get dropped messages, not a blocked broadcast.
func (h *Hub) BroadcastState(engine *game.Session) {
	snap := engine.Snapshot()
	state := wsState{Type: "state", Session: snap}
	if snap.Current != 0 {
		state.CurrentLabel = game.FormatNumber(snap.Current)
	}

	b, err := json.Marshal(state)
	if err != nil {
		logger.Errorf("[Hub %s] marshal state: %v", h.code, err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		h.sendTo(c, b)
	}
}

// sendTo delivers one message without blocking. The client may close its
// send channel between the snapshot above and this send, so the recover
// keeps a disconnect from taking the broadcaster down.
func (h *Hub) sendTo(c *Client, b []byte) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[Hub %s] recovered send to client %d: %v", h.code, c.telegramID, r)
		}
	}()
	select {
	case c.send <- b:
	default:
		logger.Warnf("[Hub %s] dropping msg to client %d", h.code, c.telegramID)
	}
}

func (h *Hub) notify(telegramID int64, message string) {
	h.mu.RLock()
	c, ok := h.clients[telegramID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	b, _ := json.Marshal(map[string]string{
		"type":    "notification",
		"message": message,
	})
	h.sendTo(c, b)
}

// CloseAll disconnects every client, e.g. when the session is removed.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	for id, c := range h.clients {
		delete(h.clients, id)
		c.Close()
	}
	h.mu.Unlock()
}
