package services

import (
	"testing"

	"github.com/addisbingo/bingo-backend/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubEngine(t *testing.T) *game.Session {
	t.Helper()
	engine, err := game.NewSession("HUBTEST1", 10, 5, game.Options{})
	require.NoError(t, err)
	return engine
}

// A client can close its send channel (disconnect) between the hub
// snapshotting its client list and the actual send; the broadcast must
// survive that and still reach the remaining clients.
func TestHub_BroadcastSurvivesClosedClient(t *testing.T) {
	engine := newHubEngine(t)
	hub := NewHub(engine.Code())

	gone := &Client{telegramID: 1, send: make(chan []byte, 1)}
	close(gone.send)
	alive := &Client{telegramID: 2, send: make(chan []byte, 1)}
	hub.clients[gone.telegramID] = gone
	hub.clients[alive.telegramID] = alive

	require.NotPanics(t, func() {
		hub.BroadcastState(engine)
	})
	assert.Len(t, alive.send, 1, "healthy clients still get the state")
}

func TestHub_NotifySurvivesClosedClient(t *testing.T) {
	engine := newHubEngine(t)
	hub := NewHub(engine.Code())

	gone := &Client{telegramID: 1, send: make(chan []byte, 1)}
	close(gone.send)
	hub.clients[gone.telegramID] = gone

	require.NotPanics(t, func() {
		hub.notify(1, "test")
	})
}

func TestHub_BroadcastDropsWhenSlow(t *testing.T) {
	engine := newHubEngine(t)
	hub := NewHub(engine.Code())

	slow := &Client{telegramID: 1, send: make(chan []byte)} // unbuffered, no reader
	hub.clients[slow.telegramID] = slow

	require.NotPanics(t, func() {
		hub.BroadcastState(engine)
	})
}
