package game

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Status of a session. Transitions are monotonic:
// waiting -> active -> finished.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

const (
	DefaultMinPlayers   = 2
	DefaultWaitingGrace = 5 * time.Minute
	DefaultActiveGrace  = 2 * time.Minute
)

// Options tune per-session behavior. The zero value gets sane defaults.
type Options struct {
	MinPlayers int

	// SeedCards derives each cartela from its slot number, so the same
	// cartela number always shows the same card.
	SeedCards bool

	// FourCorners enables the four-corner winning pattern.
	FourCorners bool

	// WaitingGrace / ActiveGrace are the idle thresholds CheckTimeout
	// applies while waiting for players resp. mid-game.
	WaitingGrace time.Duration
	ActiveGrace  time.Duration
}

func (o *Options) fillDefaults() {
	if o.MinPlayers <= 0 {
		o.MinPlayers = DefaultMinPlayers
	}
	if o.WaitingGrace <= 0 {
		o.WaitingGrace = DefaultWaitingGrace
	}
	if o.ActiveGrace <= 0 {
		o.ActiveGrace = DefaultActiveGrace
	}
}

// Participant is one player's membership in a session.
type Participant struct {
	PlayerID int64
	Slot     int
	Card     Card
	JoinedAt time.Time

	marked map[int]bool
}

// Settlement is the event handed to the ledger when a winner is declared.
// It is produced exactly once per session.
type Settlement struct {
	SessionCode string
	WinnerID    int64
	Prize       float64
}

// Session is one Bingo game from creation to finish. All mutating
// operations are serialized by the session mutex; each operation either
// fully applies or leaves the state untouched.
type Session struct {
	mu sync.Mutex

	code       string
	entryFee   float64
	prizePool  float64
	status     Status
	maxPlayers int
	opts       Options

	players map[int64]*Participant
	slots   map[int]int64 // slot -> player

	available []int // numbers not yet called
	called    []int
	current   int // 0 = nothing called yet

	winnerID *int64

	createdAt    time.Time
	startedAt    time.Time
	finishedAt   time.Time
	lastActivity time.Time

	rng *rand.Rand
}

// NewSession creates a session in the waiting state.
func NewSession(code string, entryFee float64, maxPlayers int, opts Options) (*Session, error) {
	opts.fillDefaults()
	if entryFee <= 0 || maxPlayers < opts.MinPlayers {
		return nil, ErrInvalidConfig
	}

	available := make([]int, MaxNumber)
	for i := range available {
		available[i] = i + 1
	}

	now := time.Now()
	return &Session{
		code:         code,
		entryFee:     entryFee,
		status:       StatusWaiting,
		maxPlayers:   maxPlayers,
		opts:         opts,
		players:      make(map[int64]*Participant),
		slots:        make(map[int]int64),
		available:    available,
		createdAt:    now,
		lastActivity: now,
		rng:          rand.New(rand.NewSource(now.UnixNano())),
	}, nil
}

// Join adds a player and returns the assigned slot. Pass requestedSlot 0 to
// take the lowest free slot. Reaching the quorum auto-activates the session
// and calls the first number.
func (s *Session) Join(playerID int64, requestedSlot int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return 0, ErrNotJoinable
	}
	if _, ok := s.players[playerID]; ok {
		return 0, ErrAlreadyJoined
	}
	if len(s.players) >= s.maxPlayers {
		return 0, ErrSessionFull
	}

	slot := requestedSlot
	if slot > 0 {
		if _, taken := s.slots[slot]; taken {
			return 0, ErrSlotTaken
		}
	} else {
		slot = 1
		for {
			if _, taken := s.slots[slot]; !taken {
				break
			}
			slot++
		}
	}

	card := GenerateCard(cardRNG(s.rng, s.opts.SeedCards, slot))
	s.players[playerID] = &Participant{
		PlayerID: playerID,
		Slot:     slot,
		Card:     card,
		JoinedAt: time.Now(),
		marked:   map[int]bool{FreeIndex: true},
	}
	s.slots[slot] = playerID
	s.prizePool += s.entryFee
	s.lastActivity = time.Now()

	if len(s.players) >= s.opts.MinPlayers && s.status == StatusWaiting {
		s.status = StatusActive
		s.startedAt = time.Now()
		s.callLocked()
	}

	return slot, nil
}

// CallNumber draws the next number. ok=false with a nil error means the
// board is exhausted; the session is then finished with no winner.
func (s *Session) CallNumber() (value int, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return 0, false, ErrNotActive
	}
	if len(s.available) == 0 {
		s.finishLocked(nil)
		return 0, false, nil
	}
	return s.callLocked(), true, nil
}

// callLocked draws uniformly without replacement. Caller holds the lock and
// has verified at least one number remains.
func (s *Session) callLocked() int {
	i := s.rng.Intn(len(s.available))
	n := s.available[i]
	s.available[i] = s.available[len(s.available)-1]
	s.available = s.available[:len(s.available)-1]

	s.called = append(s.called, n)
	s.current = n
	s.lastActivity = time.Now()
	return n
}

// MarkNumber marks value on the player's card. It reports whether a new
// mark was made; an illegal click (not a participant, value not on the
// card, not yet called, or already marked) returns false, never an error.
func (s *Session) MarkNumber(playerID int64, value int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return false
	}
	p, ok := s.players[playerID]
	if !ok {
		return false
	}
	idx := p.Card.IndexOf(value)
	if idx < 0 {
		return false
	}
	if !s.calledContains(value) {
		return false
	}
	if p.marked[idx] {
		return false
	}
	p.marked[idx] = true
	s.lastActivity = time.Now()
	return true
}

func (s *Session) calledContains(value int) bool {
	for _, n := range s.called {
		if n == value {
			return true
		}
	}
	return false
}

// CheckWin reports whether the player's marks complete a winning pattern.
// Read-only.
func (s *Session) CheckWin(playerID int64) (bool, Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return false, PatternNone
	}
	pattern, won := winningPattern(p.marked, s.opts.FourCorners)
	if !won {
		return false, PatternNone
	}
	return true, pattern
}

// DeclareWinner commits a win claim. The claim is re-validated under the
// session lock, so when two players claim after the same call only the
// first one admitted wins; later claims return false. On success the
// session finishes and the settlement event is returned, exactly once.
func (s *Session) DeclareWinner(playerID int64) (Settlement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return Settlement{}, false
	}
	p, ok := s.players[playerID]
	if !ok {
		return Settlement{}, false
	}
	if _, won := winningPattern(p.marked, s.opts.FourCorners); !won {
		return Settlement{}, false
	}

	id := playerID
	s.finishLocked(&id)
	return Settlement{
		SessionCode: s.code,
		WinnerID:    playerID,
		Prize:       s.prizePool,
	}, true
}

// Cancel force-finishes the session with no winner (timeout or too few
// players; enforcement lives in the directory). Returns false if the
// session already finished.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusFinished {
		return false
	}
	s.finishLocked(nil)
	return true
}

func (s *Session) finishLocked(winnerID *int64) {
	s.status = StatusFinished
	s.winnerID = winnerID
	s.finishedAt = time.Now()
	s.lastActivity = s.finishedAt
}

// CheckTimeout reports whether the session has been idle past its grace
// period. Pure policy: it never mutates state, the directory decides what
// to do with the answer.
func (s *Session) CheckTimeout(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idle := now.Sub(s.lastActivity)
	switch s.status {
	case StatusWaiting:
		return idle > s.opts.WaitingGrace
	case StatusActive:
		return idle > s.opts.ActiveGrace
	default:
		return false
	}
}

// -------------------- Read-only queries --------------------

func (s *Session) Code() string {
	return s.code
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) EntryFee() float64 {
	return s.entryFee
}

func (s *Session) PrizePool() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prizePool
}

func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// CurrentNumber returns the latest called number, ok=false before the
// first call.
func (s *Session) CurrentNumber() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != 0
}

// CalledNumbers returns a copy of the call sequence in draw order.
func (s *Session) CalledNumbers() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.called...)
}

// Winner returns the winning player, ok=false if there is none.
func (s *Session) Winner() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.winnerID == nil {
		return 0, false
	}
	return *s.winnerID, true
}

// PlayerCard returns the player's card and sorted marked indices.
func (s *Session) PlayerCard(playerID int64) (Card, []int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return Card{}, nil, false
	}
	return p.Card, sortedIndices(p.marked), true
}

// TakenSlots returns the occupied slot numbers in ascending order.
func (s *Session) TakenSlots() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, 0, len(s.slots))
	for slot := range s.slots {
		out = append(out, slot)
	}
	sort.Ints(out)
	return out
}

func sortedIndices(marked map[int]bool) []int {
	out := make([]int, 0, len(marked))
	for idx := range marked {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
