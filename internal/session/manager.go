package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager maps session IDs to their state and evicts idle sessions.
type Manager struct {
	states        map[uuid.UUID]*State
	mu            sync.RWMutex
	ttl           time.Duration
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewManager creates a manager. Sessions idle longer than ttl are dropped by a
// background sweep every cleanupInterval; a non-positive interval disables it.
func NewManager(ttl, cleanupInterval time.Duration) *Manager {
	m := &Manager{
		states: make(map[uuid.UUID]*State),
		ttl:    ttl,
	}

	if ttl > 0 && cleanupInterval > 0 {
		m.cleanupTicker = time.NewTicker(cleanupInterval)
		m.cleanupStop = make(chan struct{})
		go m.cleanup()
	}

	return m
}

// Get returns the state for id, creating a fresh one if the session is unknown.
func (m *Manager) Get(id uuid.UUID) *State {
	now := time.Now()

	// touch under the lock so a concurrent sweep never drops a state
	// that has just been handed out
	m.mu.RLock()
	state, exists := m.states[id]
	if exists {
		state.touch(now)
	}
	m.mu.RUnlock()

	if exists {
		return state
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Double-check after acquiring write lock
	if existing, exists := m.states[id]; exists {
		existing.touch(now)
		return existing
	}
	state = NewState()
	m.states[id] = state
	log.Printf("[session] created %s", id)
	return state
}

// Reset discards the state for id; the next Get starts from defaults.
func (m *Manager) Reset(id uuid.UUID) {
	m.mu.Lock()
	delete(m.states, id)
	m.mu.Unlock()
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}

func (m *Manager) cleanup() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.evictIdle(time.Now())
		case <-m.cleanupStop:
			return
		}
	}
}

// evictIdle removes sessions not seen since now minus the TTL.
func (m *Manager) evictIdle(now time.Time) int {
	cutoff := now.Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, state := range m.states {
		if state.idleSince(cutoff) {
			delete(m.states, id)
			evicted++
		}
	}
	if evicted > 0 {
		log.Printf("[session] evicted %d idle sessions", evicted)
	}
	return evicted
}

// Stop stops the cleanup goroutine.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		if m.cleanupTicker != nil {
			m.cleanupTicker.Stop()
		}
		if m.cleanupStop != nil {
			close(m.cleanupStop)
		}
	})
}
