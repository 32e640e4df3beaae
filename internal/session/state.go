// Package session holds the per-browser state of the headline scorer: the
// headline list, the last scored result and pending messages.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/headline-scorer/internal/headlines"
	"github.com/jonathan/headline-scorer/internal/scoring"
)

// Level is the severity of a flash message
type Level string

// Flash message levels
const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Message is a one-shot notice shown on the next page render
type Message struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// State is everything one session owns. A new State has an empty list,
// no result, an empty input field and no messages.
// Fields other than lastSeen may only be touched inside Do.
type State struct {
	mu sync.Mutex

	Store  *headlines.Store
	Result *scoring.Result
	// Input is the text left in the single-headline field
	Input string
	Flash []Message

	// lastSeen is read by eviction without taking mu
	lastSeen atomic.Int64
}

// NewState creates a state with its constructor defaults
func NewState() *State {
	s := &State{Store: headlines.NewStore()}
	s.lastSeen.Store(time.Now().UnixNano())
	return s
}

// Do runs fn while holding the state's lock.
func (s *State) Do(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

// AddFlash queues a message for the next render
func (s *State) AddFlash(level Level, text string) {
	s.Flash = append(s.Flash, Message{Level: level, Text: text})
}

// TakeFlash returns queued messages and clears the queue
func (s *State) TakeFlash() []Message {
	msgs := s.Flash
	s.Flash = nil
	return msgs
}

func (s *State) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *State) idleSince(cutoff time.Time) bool {
	return s.lastSeen.Load() < cutoff.UnixNano()
}
