package services

import (
	"encoding/json"

	"github.com/addisbingo/bingo-backend/game"
	"github.com/addisbingo/bingo-backend/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotStore durably writes session snapshots. It never mutates engine
// state; the directory invokes it after an engine operation returns.
type SnapshotStore interface {
	Save(snap game.Snapshot) error
}

// GormSnapshotStore upserts one row per session, keyed by session code.
type GormSnapshotStore struct {
	db *gorm.DB
}

func NewGormSnapshotStore(db *gorm.DB) *GormSnapshotStore {
	return &GormSnapshotStore{db: db}
}

func (s *GormSnapshotStore) Save(snap game.Snapshot) error {
	called, err := json.Marshal(snap.Called)
	if err != nil {
		return err
	}
	players, err := json.Marshal(snap.Players)
	if err != nil {
		return err
	}

	rec := models.SessionRecord{
		Code:        snap.Code,
		Status:      string(snap.Status),
		EntryFee:    snap.EntryFee,
		PrizePool:   snap.PrizePool,
		WinnerID:    snap.WinnerID,
		CalledJSON:  datatypes.JSON(called),
		PlayersJSON: datatypes.JSON(players),
		StartedAt:   snap.StartedAt,
		FinishedAt:  snap.FinishedAt,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "prize_pool", "winner_id",
			"called_json", "players_json",
			"started_at", "finished_at", "updated_at",
		}),
	}).Create(&rec).Error
}
