package models

import "time"

type TransactionType string

const (
	EntryTransaction  TransactionType = "entry"  // stake charged on join
	WinTransaction    TransactionType = "win"    // prize pool credited
	RefundTransaction TransactionType = "refund" // entry returned on cancel
)

type Transaction struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `json:"user_id"`
	SessionCode  string          `gorm:"index" json:"session_code"`
	Type         TransactionType `json:"type"`
	Amount       float64         `json:"amount"`
	BalanceAfter float64         `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}
