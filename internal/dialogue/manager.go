// Package dialogue provides the session registry used by the transports.
package dialogue

import (
	"log/slog"
	"sync"

	"github.com/CloseLoop/SalesPipe/internal/models"
)

// Manager tracks the active conversations by session ID. Transports own the
// session lifecycle: they create a conversation when a call/connection
// begins and end it on teardown.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Conversation
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	slog.Debug("dialogue.NewManager: creating session registry")
	return &Manager{sessions: make(map[string]*Conversation)}
}

// Create registers a new conversation for the session ID. It fails if the ID
// is empty or already registered.
func (m *Manager) Create(sessionID string, contact models.Contact, input models.PersonalizationInput) (*Conversation, error) {
	if sessionID == "" {
		return nil, models.ErrEmptySessionID
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[sessionID]; exists {
		slog.Warn("Manager.Create: session already exists", "sessionID", sessionID)
		return nil, models.ErrSessionExists
	}

	conv := NewConversation(sessionID, contact, input)
	m.sessions[sessionID] = conv
	slog.Info("Manager.Create: session registered", "sessionID", sessionID, "active", len(m.sessions))
	return conv, nil
}

// Get returns the conversation for a session ID.
func (m *Manager) Get(sessionID string) (*Conversation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.sessions[sessionID]
	return conv, ok
}

// End removes the session's conversation state. Ending an unknown session is
// a no-op.
func (m *Manager) End(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return
	}
	delete(m.sessions, sessionID)
	slog.Info("Manager.End: session removed", "sessionID", sessionID, "active", len(m.sessions))
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
