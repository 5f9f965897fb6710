// Package session keeps per-conversation state. Entries live for the
// lifetime of the process; durability is deliberately out of scope.
package session

import (
	"sync"

	"cfbot/internal/model"
)

// Store is the session repository consumed by the controller. The in-memory
// implementation below is the only one shipped; the interface exists so
// tests can observe or replace it.
type Store interface {
	Get(chatID int64) (*model.Session, bool)
	Put(s *model.Session)
	Delete(chatID int64)
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*model.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]*model.Session)}
}

func (m *MemoryStore) Get(chatID int64) (*model.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	return s, ok
}

func (m *MemoryStore) Put(s *model.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ChatID] = s
}

func (m *MemoryStore) Delete(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, chatID)
}
