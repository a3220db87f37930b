package services

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/addisbingo/bingo-backend/game"
	"github.com/addisbingo/bingo-backend/utils/logger"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// DirectoryConfig is the policy the directory applies to the sessions it
// owns: engine defaults plus call cadence and timeout enforcement.
type DirectoryConfig struct {
	MinPlayers        int
	DefaultMaxPlayers int
	SeedCards         bool
	FourCorners       bool

	CallInterval  time.Duration
	SweepInterval time.Duration
	WaitingGrace  time.Duration
	ActiveGrace   time.Duration
}

func (c *DirectoryConfig) fillDefaults() {
	if c.DefaultMaxPlayers <= 0 {
		c.DefaultMaxPlayers = 100
	}
	if c.CallInterval <= 0 {
		c.CallInterval = 5 * time.Second
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = 10 * time.Second
	}
}

type sessionHandle struct {
	engine *game.Session
	hub    *Hub

	callerMu   sync.Mutex
	callerOn   bool
	stopCaller chan struct{}
}

// Directory owns the live sessions: it creates engine instances, routes
// player actions to them, runs the auto-caller and timeout sweeper, and
// garbage-collects finished sessions after persisting them. Constructed at
// process start and injected into handlers.
type Directory struct {
	cfg    DirectoryConfig
	store  SnapshotStore
	ledger Ledger

	mu       sync.RWMutex
	sessions map[string]*sessionHandle

	quit chan struct{}
	wg   sync.WaitGroup
}

func NewDirectory(cfg DirectoryConfig, store SnapshotStore, ledger Ledger) *Directory {
	cfg.fillDefaults()
	d := &Directory{
		cfg:      cfg,
		store:    store,
		ledger:   ledger,
		sessions: make(map[string]*sessionHandle),
		quit:     make(chan struct{}),
	}
	d.wg.Add(1)
	go d.sweep()
	return d
}

// Close stops the background loops and drains the live sessions:
// unfinished ones are cancelled with refunds, everything is persisted.
func (d *Directory) Close() {
	close(d.quit)
	d.wg.Wait()

	d.mu.Lock()
	handles := make([]*sessionHandle, 0, len(d.sessions))
	for _, h := range d.sessions {
		handles = append(handles, h)
	}
	d.sessions = make(map[string]*sessionHandle)
	d.mu.Unlock()

	for _, h := range handles {
		d.cancelSession(h)
		h.hub.CloseAll()
	}
	logger.Infof("[Directory] drained %d sessions", len(handles))
}

// CreateSession registers a new waiting session and returns its engine.
// maxPlayers 0 uses the configured default.
func (d *Directory) CreateSession(entryFee float64, maxPlayers int) (*game.Session, error) {
	if maxPlayers <= 0 {
		maxPlayers = d.cfg.DefaultMaxPlayers
	}

	opts := game.Options{
		MinPlayers:   d.cfg.MinPlayers,
		SeedCards:    d.cfg.SeedCards,
		FourCorners:  d.cfg.FourCorners,
		WaitingGrace: d.cfg.WaitingGrace,
		ActiveGrace:  d.cfg.ActiveGrace,
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	code := newSessionCode()
	for _, taken := d.sessions[code]; taken; _, taken = d.sessions[code] {
		code = newSessionCode()
	}

	engine, err := game.NewSession(code, entryFee, maxPlayers, opts)
	if err != nil {
		return nil, err
	}
	d.sessions[code] = &sessionHandle{
		engine:     engine,
		hub:        NewHub(code),
		stopCaller: make(chan struct{}),
	}

	d.persist(engine)
	logger.Infof("[Directory] session %s created (fee=%.2f, max=%d)", code, entryFee, maxPlayers)
	return engine, nil
}

// Get returns the live engine for a session code.
func (d *Directory) Get(code string) (*game.Session, bool) {
	h, ok := d.handle(code)
	if !ok {
		return nil, false
	}
	return h.engine, true
}

// List returns snapshots of every live session.
func (d *Directory) List() []game.Snapshot {
	d.mu.RLock()
	handles := make([]*sessionHandle, 0, len(d.sessions))
	for _, h := range d.sessions {
		handles = append(handles, h)
	}
	d.mu.RUnlock()

	out := make([]game.Snapshot, 0, len(handles))
	for _, h := range handles {
		out = append(out, h.engine.Snapshot())
	}
	return out
}

// Join charges the entry fee and adds the player. The charge is refunded
// if the engine rejects the join; reaching quorum starts the auto-caller.
func (d *Directory) Join(code string, telegramID int64, slot int) (int, error) {
	h, ok := d.handle(code)
	if !ok {
		return 0, ErrSessionNotFound
	}

	if err := d.ledger.ChargeEntry(code, telegramID, h.engine.EntryFee()); err != nil {
		return 0, err
	}

	assigned, err := h.engine.Join(telegramID, slot)
	if err != nil {
		if rerr := d.ledger.RefundEntry(code, telegramID, h.engine.EntryFee()); rerr != nil {
			logger.Errorf("[Directory] session %s: refund after failed join for %d: %v", code, telegramID, rerr)
		}
		return 0, err
	}

	if h.engine.Status() == game.StatusActive {
		d.startCaller(h)
	}
	d.persist(h.engine)
	d.broadcast(h)
	logger.Infof("[Directory] session %s: player %d joined slot %d", code, telegramID, assigned)
	return assigned, nil
}

// CallNext draws one number on operator demand.
func (d *Directory) CallNext(code string) (int, bool, error) {
	h, ok := d.handle(code)
	if !ok {
		return 0, false, ErrSessionNotFound
	}

	value, drawn, err := h.engine.CallNumber()
	if err != nil {
		return 0, false, err
	}
	d.persist(h.engine)
	d.broadcast(h)
	if !drawn {
		logger.Infof("[Directory] session %s: board exhausted, no winner", code)
		d.stopCallerFor(h)
	}
	return value, drawn, nil
}

// Mark forwards a mark attempt; an illegal click is false, not an error.
func (d *Directory) Mark(code string, telegramID int64, number int) (bool, error) {
	h, ok := d.handle(code)
	if !ok {
		return false, ErrSessionNotFound
	}
	marked := h.engine.MarkNumber(telegramID, number)
	if marked {
		d.broadcast(h)
	}
	return marked, nil
}

// CheckWin evaluates a player's marks without mutating anything.
func (d *Directory) CheckWin(code string, telegramID int64) (bool, game.Pattern, error) {
	h, ok := d.handle(code)
	if !ok {
		return false, game.PatternNone, ErrSessionNotFound
	}
	won, pattern := h.engine.CheckWin(telegramID)
	return won, pattern, nil
}

// Claim commits a win claim. On success the winner is credited through the
// ledger and the final snapshot is persisted.
func (d *Directory) Claim(code string, telegramID int64) (game.Settlement, bool, error) {
	h, ok := d.handle(code)
	if !ok {
		return game.Settlement{}, false, ErrSessionNotFound
	}

	ev, won := h.engine.DeclareWinner(telegramID)
	if !won {
		return game.Settlement{}, false, nil
	}

	d.stopCallerFor(h)
	if err := d.ledger.CreditWin(ev); err != nil {
		logger.Errorf("[Directory] session %s: credit winner %d: %v", code, ev.WinnerID, err)
	}
	d.persist(h.engine)
	d.broadcast(h)
	logger.Infof("[Directory] session %s: player %d won %.2f", code, ev.WinnerID, ev.Prize)
	return ev, true, nil
}

// Snapshot returns the full state of one live session.
func (d *Directory) Snapshot(code string) (game.Snapshot, error) {
	h, ok := d.handle(code)
	if !ok {
		return game.Snapshot{}, ErrSessionNotFound
	}
	return h.engine.Snapshot(), nil
}

// -------------------- internals --------------------

func (d *Directory) handle(code string) (*sessionHandle, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.sessions[code]
	return h, ok
}

// startCaller launches the per-session draw loop. Idempotent.
func (d *Directory) startCaller(h *sessionHandle) {
	h.callerMu.Lock()
	defer h.callerMu.Unlock()
	if h.callerOn {
		return
	}
	h.callerOn = true

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.cfg.CallInterval)
		defer ticker.Stop()

		for {
			select {
			case <-h.stopCaller:
				return
			case <-d.quit:
				return
			case <-ticker.C:
				value, drawn, err := h.engine.CallNumber()
				if err != nil {
					// session finished under us (winner or cancel)
					return
				}
				d.persist(h.engine)
				d.broadcast(h)
				if !drawn {
					logger.Infof("[Directory] session %s: board exhausted, no winner", h.engine.Code())
					return
				}
				logger.Debugf("[Directory] session %s: called %s", h.engine.Code(), game.FormatNumber(value))
			}
		}
	}()
}

func (d *Directory) stopCallerFor(h *sessionHandle) {
	h.callerMu.Lock()
	defer h.callerMu.Unlock()
	if !h.callerOn {
		return
	}
	h.callerOn = false
	close(h.stopCaller)
}

// sweep enforces timeouts and garbage-collects finished sessions.
func (d *Directory) sweep() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.quit:
			return
		case <-ticker.C:
			now := time.Now()
			for code, h := range d.snapshotHandles() {
				if h.engine.CheckTimeout(now) {
					logger.Infof("[Directory] session %s timed out (%s)", code, h.engine.Status())
					d.cancelSession(h)
				}
				if h.engine.Status() == game.StatusFinished {
					d.persist(h.engine)
					d.remove(code)
					h.hub.CloseAll()
				}
			}
		}
	}
}

func (d *Directory) snapshotHandles() map[string]*sessionHandle {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]*sessionHandle, len(d.sessions))
	for code, h := range d.sessions {
		out[code] = h
	}
	return out
}

// cancelSession force-finishes a session with no winner and refunds every
// participant's entry fee.
func (d *Directory) cancelSession(h *sessionHandle) {
	// Cancel first: it closes the session to joins under the engine lock,
	// so the snapshot taken next holds everyone who was ever charged.
	if !h.engine.Cancel() {
		return
	}
	d.stopCallerFor(h)

	snap := h.engine.Snapshot()
	for _, p := range snap.Players {
		if err := d.ledger.RefundEntry(snap.Code, p.PlayerID, snap.EntryFee); err != nil {
			logger.Errorf("[Directory] session %s: refund player %d: %v", snap.Code, p.PlayerID, err)
		}
	}
	d.persist(h.engine)
	d.broadcast(h)
}

func (d *Directory) remove(code string) {
	d.mu.Lock()
	delete(d.sessions, code)
	d.mu.Unlock()
	logger.Infof("[Directory] session %s removed", code)
}

func (d *Directory) persist(engine *game.Session) {
	if err := d.store.Save(engine.Snapshot()); err != nil {
		logger.Errorf("[Directory] session %s: persist: %v", engine.Code(), err)
	}
}

func (d *Directory) broadcast(h *sessionHandle) {
	h.hub.BroadcastState(h.engine)
}

func newSessionCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
