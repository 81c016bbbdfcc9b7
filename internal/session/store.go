// Package session holds the per-sender conversation state and the
// inactivity deadlines attached to it. Sessions are in-memory only; nothing
// survives a restart.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tiendasmegan/meganbot/internal/advisor"
)

// Stage is the sender's position in the scripted conversation state machine.
type Stage string

// Scripted conversation stages. StageAwaitingGender and the AWAITING_TYPE_*
// stages are set by advisor commands but never branched on by the router;
// they record where the advisor steered the conversation.
const (
	StageNone                  Stage = ""
	StageAwaitingDataLima      Stage = "AWAITING_DATA_LIMA"
	StageAwaitingDataProvincia Stage = "AWAITING_DATA_PROVINCIA"
	StageAdvisor               Stage = "ADVISOR"
	StageAwaitingGender        Stage = "AWAITING_GENDER"
)

// StageAwaitingType builds the per-gender type-selection stage.
func StageAwaitingType(gender string) Stage {
	return Stage("AWAITING_TYPE_" + strings.ToUpper(gender))
}

// Session is the mutable conversation state of one sender.
//
// History and AdvisorMessages are scoped to advisor-mode lifetime. The
// boolean flags are one-shot: WarningSent gates the purchase-flow reminder,
// FirstMessageSeen suppresses AI delegation on a sender's very first free
// text, and ProvinceConfirmationSent marks that payment instructions were
// already issued for a Provincia order.
type Session struct {
	Stage                    Stage
	History                  []advisor.Message
	AdvisorMessages          int
	WarningSent              bool
	FirstMessageSeen         bool
	ProvinceConfirmationSent bool
}

type entry struct {
	sess     Session
	lastSeen time.Time
}

// Store is a concurrent-safe session store keyed by sender identifier.
// Sessions are created implicitly on first access.
type Store struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	entries map[string]*entry
}

// NewStore constructs an empty Store. The clock drives the last-seen
// timestamps used by idle pruning.
func NewStore(clock clockwork.Clock) *Store {
	return &Store{
		clock:   clock,
		entries: make(map[string]*entry),
	}
}

// Get returns a copy of the sender's session, or a zero-valued default if
// the sender has never been seen. It never fails.
func (s *Store) Get(senderID string) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.entries[senderID]; ok {
		return e.sess
	}
	return Session{}
}

// Mutate applies fn to the sender's session under the store lock, creating
// a default session first if the sender is new.
func (s *Store) Mutate(senderID string, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[senderID]
	if !ok {
		e = &entry{}
		s.entries[senderID] = e
	}
	e.lastSeen = s.clock.Now()
	fn(&e.sess)
}

// SetStage updates only the sender's stage.
func (s *Store) SetStage(senderID string, stage Stage) {
	s.Mutate(senderID, func(sess *Session) {
		sess.Stage = stage
	})
}

// Clear removes every per-user key for the sender. It is idempotent and
// safe to call on an already-cleared session.
func (s *Store) Clear(senderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, senderID)
}

// EndConversation clears the conversation-relevant state (stage, history,
// advisor counter) while keeping the one-shot flags. This is what inactivity
// finalization applies.
func (s *Store) EndConversation(senderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[senderID]
	if !ok {
		return
	}
	e.sess.Stage = StageNone
	e.sess.History = nil
	e.sess.AdvisorMessages = 0
}

// PruneIdle removes whole sessions not touched within the window and
// returns how many were dropped.
func (s *Store) PruneIdle(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.clock.Now().Add(-olderThan)
	pruned := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			pruned++
		}
	}
	return pruned
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
