package services

import (
	"errors"

	"github.com/addisbingo/bingo-backend/game"
	"github.com/addisbingo/bingo-backend/models"
	"gorm.io/gorm"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger settles money movements for the directory. The engine itself
// never touches balances; it only emits settlement events.
type Ledger interface {
	// ChargeEntry debits the entry fee when a player joins.
	ChargeEntry(sessionCode string, telegramID int64, amount float64) error
	// CreditWin credits the prize pool to the declared winner.
	CreditWin(ev game.Settlement) error
	// RefundEntry returns the entry fee when a session is cancelled.
	RefundEntry(sessionCode string, telegramID int64, amount float64) error
}

// GormLedger records every movement as a transaction row next to the
// balance update, in one DB transaction.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (l *GormLedger) ChargeEntry(sessionCode string, telegramID int64, amount float64) error {
	return l.apply(sessionCode, telegramID, -amount, models.EntryTransaction)
}

func (l *GormLedger) CreditWin(ev game.Settlement) error {
	return l.apply(ev.SessionCode, ev.WinnerID, ev.Prize, models.WinTransaction)
}

func (l *GormLedger) RefundEntry(sessionCode string, telegramID int64, amount float64) error {
	return l.apply(sessionCode, telegramID, amount, models.RefundTransaction)
}

func (l *GormLedger) apply(sessionCode string, telegramID int64, delta float64, kind models.TransactionType) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
			return err
		}
		if user.Balance+delta < 0 {
			return ErrInsufficientBalance
		}
		user.Balance += delta
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Create(&models.Transaction{
			UserID:       user.ID,
			SessionCode:  sessionCode,
			Type:         kind,
			Amount:       delta,
			BalanceAfter: user.Balance,
		}).Error
	})
}
