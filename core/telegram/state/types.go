package state

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// State names a single step of a multi-message conversation.
type State string

// StateIdle marks the absence of an in-progress conversation.
const StateIdle State = "idle"

// Session holds per-user conversation progress plus scratch data collected
// along the way (e.g. an identifier from a previous message).
type Session struct {
	State State
	Temp  map[string]any
}

// Manager stores and mutates per-user sessions. Implementations must be safe
// for concurrent use.
type Manager interface {
	Get(ctx context.Context, userID int64) Session
	SetState(ctx context.Context, userID int64, st State)
	GetState(ctx context.Context, userID int64) State
	SetTemp(ctx context.Context, userID int64, key string, value any)
	GetTemp(ctx context.Context, userID int64, key string) (any, bool)
	TempString(ctx context.Context, userID int64, key string) string
	Clear(ctx context.Context, userID int64)
	InProgress(ctx context.Context, userID int64) bool

	// RegisterHandler binds a telebot handler to a state; HandlerFor
	// resolves a session's current handler, or nil.
	RegisterHandler(st State, h tele.HandlerFunc)
	HandlerFor(st State) tele.HandlerFunc
}
