package state

import (
	"context"
	"sync"

	tele "gopkg.in/telebot.v4"
)

// NewMemoryManager returns an in-process Manager. Sessions do not survive a
// restart, which is acceptable: every conversation can be restarted with a
// single command.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	handlers map[State]tele.HandlerFunc
}

func (m *memoryManager) Get(_ context.Context, userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return *s
	}
	return Session{State: StateIdle}
}

func (m *memoryManager) session(userID int64) *Session {
	s, ok := m.sessions[userID]
	if !ok {
		s = &Session{State: StateIdle, Temp: make(map[string]any)}
		m.sessions[userID] = s
	}
	return s
}

func (m *memoryManager) SetState(_ context.Context, userID int64, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(userID).State = st
}

func (m *memoryManager) GetState(_ context.Context, userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s.State
	}
	return StateIdle
}

func (m *memoryManager) SetTemp(_ context.Context, userID int64, key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session(userID)
	if s.Temp == nil {
		s.Temp = make(map[string]any)
	}
	s.Temp[key] = value
}

func (m *memoryManager) GetTemp(_ context.Context, userID int64, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok && s.Temp != nil {
		v, ok := s.Temp[key]
		return v, ok
	}
	return nil, false
}

func (m *memoryManager) TempString(ctx context.Context, userID int64, key string) string {
	v, ok := m.GetTemp(ctx, userID, key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (m *memoryManager) Clear(_ context.Context, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

func (m *memoryManager) InProgress(_ context.Context, userID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return ok && s.State != StateIdle
}

func (m *memoryManager) RegisterHandler(st State, h tele.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[st] = h
}

func (m *memoryManager) HandlerFor(st State) tele.HandlerFunc {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.handlers[st]
}
