package game

import (
	"sort"
	"time"
)

// ParticipantSnapshot is one player's state inside a session snapshot.
type ParticipantSnapshot struct {
	PlayerID int64 `json:"player_id"`
	Slot     int   `json:"slot"`
	Card     []int `json:"card"`
	Marked   []int `json:"marked"`
}

// Snapshot is the serializable record of a session, sufficient to
// reconstruct or audit it after the fact. The persistence collaborator
// decides how to store it; the engine only produces it.
type Snapshot struct {
	Code       string                `json:"code"`
	Status     Status                `json:"status"`
	EntryFee   float64               `json:"entry_fee"`
	PrizePool  float64               `json:"prize_pool"`
	Called     []int                 `json:"called"`
	Current    int                   `json:"current"`
	WinnerID   *int64                `json:"winner_id,omitempty"`
	Players    []ParticipantSnapshot `json:"players"`
	CreatedAt  time.Time             `json:"created_at"`
	StartedAt  *time.Time            `json:"started_at,omitempty"`
	FinishedAt *time.Time            `json:"finished_at,omitempty"`
}

// Snapshot captures a consistent copy of the session under its lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Code:      s.code,
		Status:    s.status,
		EntryFee:  s.entryFee,
		PrizePool: s.prizePool,
		Called:    append([]int(nil), s.called...),
		Current:   s.current,
		CreatedAt: s.createdAt,
	}
	if s.winnerID != nil {
		id := *s.winnerID
		snap.WinnerID = &id
	}
	if !s.startedAt.IsZero() {
		t := s.startedAt
		snap.StartedAt = &t
	}
	if !s.finishedAt.IsZero() {
		t := s.finishedAt
		snap.FinishedAt = &t
	}

	snap.Players = make([]ParticipantSnapshot, 0, len(s.players))
	for _, p := range s.players {
		snap.Players = append(snap.Players, ParticipantSnapshot{
			PlayerID: p.PlayerID,
			Slot:     p.Slot,
			Card:     append([]int(nil), p.Card[:]...),
			Marked:   sortedIndices(p.marked),
		})
	}
	sort.Slice(snap.Players, func(i, j int) bool {
		return snap.Players[i].Slot < snap.Players[j].Slot
	})
	return snap
}
