package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/addisbingo/bingo-backend/game"
	"github.com/addisbingo/bingo-backend/services"
	"github.com/gin-gonic/gin"
)

// SessionController exposes the session directory over HTTP.
type SessionController struct {
	dir *services.Directory
}

func NewSessionController(dir *services.Directory) *SessionController {
	return &SessionController{dir: dir}
}

// sessionError translates engine and directory errors into user-facing
// responses. The engine only rejects deterministically; wording lives here.
func sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
	case errors.Is(err, game.ErrNotJoinable):
		c.JSON(http.StatusConflict, gin.H{"error": "Game already started"})
	case errors.Is(err, game.ErrSessionFull):
		c.JSON(http.StatusConflict, gin.H{"error": "Game is full"})
	case errors.Is(err, game.ErrSlotTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Cartela already taken"})
	case errors.Is(err, game.ErrAlreadyJoined):
		c.JSON(http.StatusConflict, gin.H{"error": "You already joined this game"})
	case errors.Is(err, game.ErrNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": "Game is not active"})
	case errors.Is(err, game.ErrInvalidConfig):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game settings"})
	case errors.Is(err, services.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "Insufficient balance"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// CreateSession opens a new waiting session
func (sc *SessionController) CreateSession(c *gin.Context) {
	var req struct {
		EntryFee   float64 `json:"entry_fee" binding:"required"`
		MaxPlayers int     `json:"max_players"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	engine, err := sc.dir.CreateSession(req.EntryFee, req.MaxPlayers)
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, engine.Snapshot())
}

// ListSessions returns all live sessions
func (sc *SessionController) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, sc.dir.List())
}

// GetSession returns one session's full snapshot
func (sc *SessionController) GetSession(c *gin.Context) {
	snap, err := sc.dir.Snapshot(c.Param("code"))
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Join adds a player to a session, charging the entry fee
func (sc *SessionController) Join(c *gin.Context) {
	var req struct {
		TelegramID int64 `json:"telegram_id" binding:"required"`
		Slot       int   `json:"slot"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slot, err := sc.dir.Join(c.Param("code"), req.TelegramID, req.Slot)
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined game", "slot": slot})
}

// CallNext draws the next number (operator endpoint)
func (sc *SessionController) CallNext(c *gin.Context) {
	value, drawn, err := sc.dir.CallNext(c.Param("code"))
	if err != nil {
		sessionError(c, err)
		return
	}
	if !drawn {
		c.JSON(http.StatusOK, gin.H{"exhausted": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"number": value, "label": game.FormatNumber(value)})
}

// Mark marks a called number on the player's cartela
func (sc *SessionController) Mark(c *gin.Context) {
	var req struct {
		TelegramID int64 `json:"telegram_id" binding:"required"`
		Number     int   `json:"number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	marked, err := sc.dir.Mark(c.Param("code"), req.TelegramID, req.Number)
	if err != nil {
		sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

// Claim handles a bingo claim; losing a claim race is a normal outcome
func (sc *SessionController) Claim(c *gin.Context) {
	var req struct {
		TelegramID int64 `json:"telegram_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, won, err := sc.dir.Claim(c.Param("code"), req.TelegramID)
	if err != nil {
		sessionError(c, err)
		return
	}
	if !won {
		c.JSON(http.StatusOK, gin.H{"won": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"won": true, "prize": ev.Prize})
}

// GetCard returns a player's cartela and marked cells
func (sc *SessionController) GetCard(c *gin.Context) {
	engine, ok := sc.dir.Get(c.Param("code"))
	if !ok {
		sessionError(c, services.ErrSessionNotFound)
		return
	}

	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid telegram_id"})
		return
	}

	card, marked, ok := engine.PlayerCard(telegramID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Player not in this game"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"card": card[:], "marked": marked})
}
