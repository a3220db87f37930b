package models

import "time"

// User is a Telegram-registered player account. Balance is the wallet the
// ledger debits for entry fees and credits for wins and refunds.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TelegramID int64     `gorm:"uniqueIndex" json:"telegram_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Balance    float64   `json:"balance"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
