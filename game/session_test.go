package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFee = 10.0

func newWaitingSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := NewSession("TEST1234", testFee, 10, opts)
	require.NoError(t, err)
	return s
}

// callUntil keeps drawing until every needed value has been called.
func callUntil(t *testing.T, s *Session, needed []int) {
	t.Helper()
	have := make(map[int]bool)
	for _, n := range s.CalledNumbers() {
		have[n] = true
	}
	for {
		missing := false
		for _, n := range needed {
			if !have[n] {
				missing = true
				break
			}
		}
		if !missing {
			return
		}
		v, ok, err := s.CallNumber()
		require.NoError(t, err)
		require.True(t, ok, "board exhausted before needed numbers appeared")
		have[v] = true
	}
}

// rowValues returns the non-wildcard values of one card row.
func rowValues(card Card, row int) []int {
	var out []int
	for col := 0; col < 5; col++ {
		idx := row*5 + col
		if idx == FreeIndex {
			continue
		}
		out = append(out, card[idx])
	}
	return out
}

func TestNewSession_InvalidConfig(t *testing.T) {
	_, err := NewSession("X", 0, 10, Options{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSession("X", -5, 10, Options{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSession("X", 10, 1, Options{MinPlayers: 2})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestJoin_AutoStartAtQuorum(t *testing.T) {
	s := newWaitingSession(t, Options{})

	slot, err := s.Join(100, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
	assert.Equal(t, StatusWaiting, s.Status())
	assert.Equal(t, testFee, s.PrizePool())

	slot, err = s.Join(200, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, slot)

	// quorum reached: session self-starts and calls the first number
	assert.Equal(t, StatusActive, s.Status())
	assert.Equal(t, 2*testFee, s.PrizePool())
	assert.Len(t, s.CalledNumbers(), 1)
	current, ok := s.CurrentNumber()
	assert.True(t, ok)
	assert.Equal(t, s.CalledNumbers()[0], current)
}

func TestJoin_SlotAssignment(t *testing.T) {
	s := newWaitingSession(t, Options{MinPlayers: 5})

	_, err := s.Join(1, 1)
	require.NoError(t, err)
	_, err = s.Join(3, 3)
	require.NoError(t, err)

	// auto-assignment picks the lowest free slot
	slot, err := s.Join(2, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, slot)

	slot, err = s.Join(4, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, slot)

	assert.Equal(t, []int{1, 2, 3, 4}, s.TakenSlots())
}

func TestJoin_UsageErrors(t *testing.T) {
	s := newWaitingSession(t, Options{MinPlayers: 3})

	_, err := s.Join(1, 5)
	require.NoError(t, err)

	_, err = s.Join(2, 5)
	assert.ErrorIs(t, err, ErrSlotTaken)

	_, err = s.Join(1, 6)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	full, err := NewSession("FULL", testFee, 2, Options{})
	require.NoError(t, err)
	_, err = full.Join(1, 0)
	require.NoError(t, err)
	_, err = full.Join(2, 0)
	require.NoError(t, err)
	// session went active at quorum, so a third join is not joinable
	_, err = full.Join(3, 0)
	assert.ErrorIs(t, err, ErrNotJoinable)
}

func TestCallNumber_UniqueUntilExhausted(t *testing.T) {
	s := newWaitingSession(t, Options{})
	_, err := s.Join(1, 0)
	require.NoError(t, err)
	_, err = s.Join(2, 0)
	require.NoError(t, err)

	for {
		_, ok, err := s.CallNumber()
		require.NoError(t, err)
		if !ok {
			break
		}
	}

	called := s.CalledNumbers()
	assert.Len(t, called, MaxNumber)
	seen := make(map[int]bool)
	for _, n := range called {
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, MaxNumber)
		assert.False(t, seen[n], "number %d called twice", n)
		seen[n] = true
	}

	// exhausted board finishes the session with no winner
	assert.Equal(t, StatusFinished, s.Status())
	_, hasWinner := s.Winner()
	assert.False(t, hasWinner)

	_, _, err = s.CallNumber()
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestCallNumber_RequiresActive(t *testing.T) {
	s := newWaitingSession(t, Options{})
	_, _, err := s.CallNumber()
	assert.ErrorIs(t, err, ErrNotActive)
}

func TestMarkNumber(t *testing.T) {
	s := newWaitingSession(t, Options{})
	_, err := s.Join(1, 0)
	require.NoError(t, err)
	_, err = s.Join(2, 0)
	require.NoError(t, err)

	card, marked, ok := s.PlayerCard(1)
	require.True(t, ok)
	assert.Equal(t, []int{FreeIndex}, marked, "center pre-marked on join")

	// a value on the card but not yet called never marks
	target := rowValues(card, 0)[0]
	if s.CalledNumbers()[0] == target {
		target = rowValues(card, 0)[1]
	}
	assert.False(t, s.MarkNumber(1, target))
	_, marked, _ = s.PlayerCard(1)
	assert.Len(t, marked, 1, "failed mark must leave the marked set unchanged")

	// once called it marks exactly once
	callUntil(t, s, []int{target})
	assert.True(t, s.MarkNumber(1, target))
	assert.False(t, s.MarkNumber(1, target), "re-marking is idempotent false")
	_, marked, _ = s.PlayerCard(1)
	assert.Len(t, marked, 2)

	// wildcard and off-card values are illegal clicks, not errors
	assert.False(t, s.MarkNumber(1, FreeValue))
	assert.False(t, s.MarkNumber(99, target), "unknown player")
}

func TestCheckWin_RowScenario(t *testing.T) {
	s := newWaitingSession(t, Options{})
	_, err := s.Join(100, 1)
	require.NoError(t, err)
	_, err = s.Join(200, 2)
	require.NoError(t, err)

	card, _, ok := s.PlayerCard(100)
	require.True(t, ok)

	row := rowValues(card, 0)
	callUntil(t, s, row)
	for _, v := range row {
		assert.True(t, s.MarkNumber(100, v))
	}

	won, pattern := s.CheckWin(100)
	assert.True(t, won)
	assert.Equal(t, PatternRow, pattern)

	won, _ = s.CheckWin(200)
	assert.False(t, won)

	ev, settled := s.DeclareWinner(100)
	require.True(t, settled)
	assert.Equal(t, Settlement{SessionCode: "TEST1234", WinnerID: 100, Prize: 2 * testFee}, ev)
	assert.Equal(t, StatusFinished, s.Status())

	winner, hasWinner := s.Winner()
	assert.True(t, hasWinner)
	assert.Equal(t, int64(100), winner)

	// settlement is emitted exactly once
	_, settled = s.DeclareWinner(100)
	assert.False(t, settled)
}

func TestCheckWin_MiddleRowUsesWildcard(t *testing.T) {
	s := newWaitingSession(t, Options{})
	_, err := s.Join(1, 0)
	require.NoError(t, err)
	_, err = s.Join(2, 0)
	require.NoError(t, err)

	card, _, _ := s.PlayerCard(1)
	row := rowValues(card, 2) // 4 values, center is free
	require.Len(t, row, 4)

	callUntil(t, s, row)
	for _, v := range row {
		require.True(t, s.MarkNumber(1, v))
	}

	won, pattern := s.CheckWin(1)
	assert.True(t, won)
	assert.Equal(t, PatternRow, pattern)
}

func TestDeclareWinner_FirstCommittedWins(t *testing.T) {
	s := newWaitingSession(t, Options{})
	_, err := s.Join(100, 1)
	require.NoError(t, err)
	_, err = s.Join(200, 2)
	require.NoError(t, err)

	cardA, _, _ := s.PlayerCard(100)
	cardB, _, _ := s.PlayerCard(200)
	rowA := rowValues(cardA, 0)
	rowB := rowValues(cardB, 0)

	callUntil(t, s, append(append([]int{}, rowA...), rowB...))
	for _, v := range rowA {
		s.MarkNumber(100, v)
	}
	for _, v := range rowB {
		s.MarkNumber(200, v)
	}

	wonA, _ := s.CheckWin(100)
	wonB, _ := s.CheckWin(200)
	require.True(t, wonA)
	require.True(t, wonB)

	_, settled := s.DeclareWinner(100)
	assert.True(t, settled)

	// B also had a win, but the race is first-committed-wins
	_, settled = s.DeclareWinner(200)
	assert.False(t, settled)

	winner, _ := s.Winner()
	assert.Equal(t, int64(100), winner)
	assert.Equal(t, StatusFinished, s.Status())
}

func TestDeclareWinner_RejectsNonWinner(t *testing.T) {
	s := newWaitingSession(t, Options{})
	_, err := s.Join(1, 0)
	require.NoError(t, err)
	_, err = s.Join(2, 0)
	require.NoError(t, err)

	_, settled := s.DeclareWinner(1)
	assert.False(t, settled)
	assert.Equal(t, StatusActive, s.Status(), "a failed claim must not end the game")
}

func TestCancel(t *testing.T) {
	s := newWaitingSession(t, Options{})
	_, err := s.Join(1, 0)
	require.NoError(t, err)

	assert.True(t, s.Cancel())
	assert.Equal(t, StatusFinished, s.Status())
	_, hasWinner := s.Winner()
	assert.False(t, hasWinner)

	assert.False(t, s.Cancel(), "cancel is idempotent false once finished")

	// finished is terminal: every mutating operation is rejected
	_, err = s.Join(2, 0)
	assert.ErrorIs(t, err, ErrNotJoinable)
	_, _, err = s.CallNumber()
	assert.ErrorIs(t, err, ErrNotActive)
	assert.False(t, s.MarkNumber(1, 5))
	_, settled := s.DeclareWinner(1)
	assert.False(t, settled)
}

func TestCheckTimeout(t *testing.T) {
	opts := Options{WaitingGrace: time.Minute, ActiveGrace: 30 * time.Second}
	s := newWaitingSession(t, opts)

	now := time.Now()
	assert.False(t, s.CheckTimeout(now))
	assert.True(t, s.CheckTimeout(now.Add(2*time.Minute)))

	_, err := s.Join(1, 0)
	require.NoError(t, err)
	_, err = s.Join(2, 0)
	require.NoError(t, err)

	// active sessions stall on the shorter grace
	assert.False(t, s.CheckTimeout(time.Now().Add(10*time.Second)))
	assert.True(t, s.CheckTimeout(time.Now().Add(31*time.Second)))

	s.Cancel()
	assert.False(t, s.CheckTimeout(time.Now().Add(time.Hour)), "finished sessions never time out")
}

func TestPrizePoolTracksJoins(t *testing.T) {
	s := newWaitingSession(t, Options{MinPlayers: 6})

	for i := 1; i <= 5; i++ {
		_, err := s.Join(int64(i), 0)
		require.NoError(t, err)
		assert.Equal(t, float64(i)*testFee, s.PrizePool())
	}
}

func TestSnapshot(t *testing.T) {
	s := newWaitingSession(t, Options{})
	_, err := s.Join(200, 2)
	require.NoError(t, err)
	_, err = s.Join(100, 1)
	require.NoError(t, err)

	card, _, _ := s.PlayerCard(100)
	row := rowValues(card, 0)
	callUntil(t, s, row)
	for _, v := range row {
		s.MarkNumber(100, v)
	}
	_, settled := s.DeclareWinner(100)
	require.True(t, settled)

	snap := s.Snapshot()
	assert.Equal(t, "TEST1234", snap.Code)
	assert.Equal(t, StatusFinished, snap.Status)
	assert.Equal(t, testFee, snap.EntryFee)
	assert.Equal(t, 2*testFee, snap.PrizePool)
	assert.Equal(t, s.CalledNumbers(), snap.Called)
	require.NotNil(t, snap.WinnerID)
	assert.Equal(t, int64(100), *snap.WinnerID)
	require.NotNil(t, snap.StartedAt)
	require.NotNil(t, snap.FinishedAt)

	require.Len(t, snap.Players, 2)
	assert.Equal(t, 1, snap.Players[0].Slot, "players sorted by slot")
	assert.Equal(t, int64(100), snap.Players[0].PlayerID)
	assert.Len(t, snap.Players[0].Card, CardSize)
	assert.Contains(t, snap.Players[0].Marked, FreeIndex)
}

func TestFourCornersOption(t *testing.T) {
	s := newWaitingSession(t, Options{FourCorners: true})
	_, err := s.Join(1, 0)
	require.NoError(t, err)
	_, err = s.Join(2, 0)
	require.NoError(t, err)

	card, _, _ := s.PlayerCard(1)
	corners := []int{card[0], card[4], card[20], card[24]}
	callUntil(t, s, corners)
	for _, v := range corners {
		require.True(t, s.MarkNumber(1, v))
	}

	won, pattern := s.CheckWin(1)
	assert.True(t, won)
	assert.Equal(t, PatternCorners, pattern)
}
