// Package conversation holds the volatile per-conversation input-collection
// state. State lives in process memory only and is acceptable to lose on
// restart.
package conversation

import "sync"

// Stage identifies which free-text input a conversation is waiting for.
type Stage int

const (
	StageIdle Stage = iota
	StageAwaitingBirthday
	StageAwaitingEmail
	StageAwaitingFullName
	StageAwaitingPhone
	StageAwaitingGroupDescription
)

// Key identifies one conversation: a user inside a chat.
type Key struct {
	ChatID int64
	UserID int64
}

// State is the pending stage plus any payload the completion handler needs.
type State struct {
	Stage Stage
	// GroupID carries the target group for StageAwaitingGroupDescription.
	GroupID int64
}

// Store is a concurrency-safe holder of conversation states.
type Store struct {
	mu     sync.Mutex
	states map[Key]State
}

// NewStore constructs an empty conversation store.
func NewStore() *Store {
	return &Store{states: make(map[Key]State)}
}

// Get returns the state for the conversation, StageIdle when none is pending.
func (s *Store) Get(key Key) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.states[key]
}

// Set records a pending state for the conversation.
func (s *Store) Set(key Key, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state.Stage == StageIdle {
		delete(s.states, key)
		return
	}

	s.states[key] = state
}

// Clear unconditionally drops any pending state and reports whether one
// existed.
func (s *Store) Clear(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.states[key]
	delete(s.states, key)

	return existed
}
