package game

import "errors"

// Usage errors returned when a caller violates an operation's precondition.
// Expected negative outcomes (a losing win check, an illegal mark, a claim
// that lost the race) are reported as booleans, not errors.
var (
	ErrInvalidConfig = errors.New("invalid session config")
	ErrNotJoinable   = errors.New("session is not accepting players")
	ErrSessionFull   = errors.New("session is full")
	ErrSlotTaken     = errors.New("cartela number already taken")
	ErrAlreadyJoined = errors.New("player already joined this session")
	ErrNotActive     = errors.New("session is not active")
)
