package models

import (
	"time"

	"gorm.io/datatypes"
)

// SessionRecord is the durable snapshot of one bingo session. Written by
// the snapshot store; the live state stays in memory with the engine.
type SessionRecord struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Code        string         `gorm:"uniqueIndex;not null" json:"code"`
	Status      string         `json:"status"` // waiting | active | finished
	EntryFee    float64        `json:"entry_fee"`
	PrizePool   float64        `json:"prize_pool"`
	WinnerID    *int64         `json:"winner_id,omitempty"`
	CalledJSON  datatypes.JSON `json:"called"`  // ordered draw sequence
	PlayersJSON datatypes.JSON `json:"players"` // slot, card cells, marked indices per player
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
