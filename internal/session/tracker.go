package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Callbacks are the side effects the tracker fires on idle senders. Both
// receive the sender identifier; the tracker itself applies the state
// cleanup after OnEnd.
type Callbacks struct {
	OnNudge func(senderID string)
	OnEnd   func(senderID string)
}

type timerPair struct {
	nudge clockwork.Timer
	end   clockwork.Timer
}

// Tracker enforces the two inactivity deadlines per active sender: a nudge
// after the shorter idle window and session finalization after the longer
// one, both relative to the sender's most recent text message. At most one
// live pair exists per sender; re-arming replaces, never stacks.
type Tracker struct {
	store      *Store
	clock      clockwork.Clock
	log        *slog.Logger
	nudgeAfter time.Duration
	endAfter   time.Duration
	callbacks  Callbacks

	mu    sync.Mutex
	pairs map[string]*timerPair
}

// NewTracker constructs a Tracker over the given store.
func NewTracker(store *Store, clock clockwork.Clock, log *slog.Logger, nudgeAfter, endAfter time.Duration, cb Callbacks) *Tracker {
	return &Tracker{
		store:      store,
		clock:      clock,
		log:        log.With("component", "inactivity_tracker"),
		nudgeAfter: nudgeAfter,
		endAfter:   endAfter,
		callbacks:  cb,
		pairs:      make(map[string]*timerPair),
	}
}

// Touch cancels any existing timer pair for the sender and arms a fresh
// one. The swap happens under the tracker lock so a stale pair can never
// fire after a newer Touch.
func (t *Tracker) Touch(senderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.pairs[senderID]; ok {
		p.nudge.Stop()
		p.end.Stop()
	}

	p := &timerPair{}
	p.nudge = t.clock.AfterFunc(t.nudgeAfter, func() {
		t.log.Debug("Inactivity nudge firing", "sender_id", senderID)
		t.callbacks.OnNudge(senderID)
	})
	p.end = t.clock.AfterFunc(t.endAfter, func() {
		t.finalize(senderID, p)
	})
	t.pairs[senderID] = p
}

// Cancel drops both pending deadlines without side effects. Used when a
// session is explicitly torn down by user action so a stale finalize does
// not fire on cleared state.
func (t *Tracker) Cancel(senderID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p, ok := t.pairs[senderID]; ok {
		p.nudge.Stop()
		p.end.Stop()
		delete(t.pairs, senderID)
	}
}

// Active reports whether the sender currently has an armed timer pair.
func (t *Tracker) Active(senderID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.pairs[senderID]
	return ok
}

func (t *Tracker) finalize(senderID string, p *timerPair) {
	t.mu.Lock()
	// Only remove the pair if it is still ours: a Touch racing this
	// callback has already replaced it.
	if t.pairs[senderID] == p {
		delete(t.pairs, senderID)
	}
	t.mu.Unlock()

	t.log.Info("Finalizing session after inactivity", "sender_id", senderID)
	t.callbacks.OnEnd(senderID)
	t.store.EndConversation(senderID)
}
