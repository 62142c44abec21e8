// Package session drives one run-through of a sequenced deck: the
// per-item timer, pause handling, and the capture handshake before
// each advance. The Session type is a pure state machine; Engine owns
// it on a single goroutine and performs all IO around it.
package session

import (
	"github.com/google/uuid"

	"github.com/croki-app/croki/internal/deck"
)

// Mode selects how the per-item timer runs.
type Mode int

const (
	// Timed counts remaining seconds down and forces a capture at zero.
	Timed Mode = iota
	// Study counts elapsed seconds up and never expires on its own.
	Study
)

func (m Mode) String() string {
	if m == Study {
		return "study"
	}
	return "timed"
}

// State is the session's position in its lifecycle.
type State int

const (
	StateLoading State = iota
	StateDisplaying
	StatePaused
	StateCaptureRequested
	StateAwaitingConfirmation
	StateAdvancing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateDisplaying:
		return "displaying"
	case StatePaused:
		return "paused"
	case StateCaptureRequested:
		return "capture-requested"
	case StateAwaitingConfirmation:
		return "awaiting-confirmation"
	case StateAdvancing:
		return "advancing"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Effect tells the owner what work a transition requires. The machine
// itself performs no IO.
type Effect int

const (
	EffectNone Effect = iota
	// EffectLoad: decode and present the current asset, then call Loaded.
	EffectLoad
	// EffectRequestCapture: run the capture handshake, then call CaptureResult.
	EffectRequestCapture
	// EffectAwaitConfirmation: present the capture for accept/reject.
	EffectAwaitConfirmation
	// EffectPersistPair: write the pair draft, then call Advance.
	EffectPersistPair
	// EffectStopped: release resources and notify completion, once.
	EffectStopped
)

// PairDraft is the accepted capture waiting to be persisted.
type PairDraft struct {
	Asset           deck.ImageAsset
	CapturedBytes   []byte
	DurationSeconds int
}

// Session is the pure state machine for one practice run. It references
// a sequenced snapshot of assets; deck edits after start do not affect
// a running session.
type Session struct {
	id        string
	mode      Mode
	countdown int
	assets    []deck.ImageAsset

	state     State
	index     int
	remaining int
	elapsed   int
	paused    bool

	// pendingStep is the index delta applied on the next Advance.
	// Timed captures always move forward; Study routes both next and
	// previous through the handshake.
	pendingStep int

	captured []byte
	draft    *PairDraft
}

// New builds a session over an already-sequenced asset snapshot.
// countdownSeconds applies to Timed mode only.
func New(assets []deck.ImageAsset, mode Mode, countdownSeconds int) *Session {
	s := &Session{
		id:          uuid.NewString(),
		mode:        mode,
		countdown:   countdownSeconds,
		assets:      append([]deck.ImageAsset(nil), assets...),
		state:       StateLoading,
		pendingStep: 1,
	}
	s.resetTimer()
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Mode returns the timing mode.
func (s *Session) Mode() Mode { return s.mode }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Index returns the current position in the sequence.
func (s *Session) Index() int { return s.index }

// Len returns the number of assets still in the sequence.
func (s *Session) Len() int { return len(s.assets) }

// Paused reports whether ticks are currently ignored.
func (s *Session) Paused() bool { return s.paused }

// Remaining returns the countdown value (Timed mode).
func (s *Session) Remaining() int { return s.remaining }

// Elapsed returns the stopwatch value (Study mode).
func (s *Session) Elapsed() int { return s.elapsed }

// Current returns the asset at the current index.
func (s *Session) Current() (deck.ImageAsset, bool) {
	if s.index < 0 || s.index >= len(s.assets) {
		return deck.ImageAsset{}, false
	}
	return s.assets[s.index], true
}

// Draft returns the accepted capture pending persistence, if any.
func (s *Session) Draft() *PairDraft { return s.draft }

// CapturedBytes returns the capture awaiting confirmation, if any.
func (s *Session) CapturedBytes() []byte { return s.captured }

func (s *Session) resetTimer() {
	if s.mode == Timed {
		s.remaining = s.countdown
	} else {
		s.elapsed = 0
	}
}

// Loaded reports that the current asset has been decoded and presented,
// completing the Loading state.
func (s *Session) Loaded() Effect {
	if s.state != StateLoading {
		return EffectNone
	}
	s.state = StateDisplaying
	return EffectNone
}

// SkipBroken drops the current asset from the sequence after a decode
// failure and reloads at the same index. An emptied sequence stops the
// session.
func (s *Session) SkipBroken() Effect {
	if s.state != StateLoading {
		return EffectNone
	}
	if len(s.assets) > 0 {
		s.assets = append(s.assets[:s.index], s.assets[s.index+1:]...)
	}
	if len(s.assets) == 0 {
		return s.Stop()
	}
	if s.index >= len(s.assets) {
		s.index = 0
	}
	s.resetTimer()
	return EffectLoad
}

// Tick advances the per-item timer by one second. Ignored outside
// Displaying and while paused. In Timed mode, reaching zero requests
// a capture.
func (s *Session) Tick() Effect {
	if s.state != StateDisplaying || s.paused {
		return EffectNone
	}
	if s.mode == Study {
		s.elapsed++
		return EffectNone
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		s.pendingStep = 1
		s.state = StateCaptureRequested
		return EffectRequestCapture
	}
	return EffectNone
}

// TogglePause flips the pause flag. Resuming with a spent Timed timer
// goes straight to the capture request instead of re-entering
// Displaying with a stuck zero.
func (s *Session) TogglePause() Effect {
	switch s.state {
	case StateDisplaying:
		s.paused = true
		s.state = StatePaused
	case StatePaused:
		s.paused = false
		if s.mode == Timed && s.remaining == 0 {
			s.pendingStep = 1
			s.state = StateCaptureRequested
			return EffectRequestCapture
		}
		s.state = StateDisplaying
	}
	return EffectNone
}

// Next skips forward. Timed mode advances directly without a capture
// and records nothing; Study mode routes through the handshake first.
func (s *Session) Next() Effect {
	if s.state != StateDisplaying && s.state != StatePaused {
		return EffectNone
	}
	if s.mode == Study {
		s.pendingStep = 1
		s.state = StateCaptureRequested
		return EffectRequestCapture
	}
	s.index = s.wrap(s.index + 1)
	s.state = StateLoading
	s.resetTimer()
	return EffectLoad
}

// Previous steps back. Timed mode decrements the index, clamped at 0
// (a no-op when already there); Study mode routes through the
// handshake and steps back on advance.
func (s *Session) Previous() Effect {
	if s.state != StateDisplaying && s.state != StatePaused {
		return EffectNone
	}
	if s.mode == Study {
		s.pendingStep = -1
		s.state = StateCaptureRequested
		return EffectRequestCapture
	}
	if s.index == 0 {
		return EffectNone
	}
	s.index--
	s.state = StateLoading
	s.resetTimer()
	return EffectLoad
}

// CaptureResult reports the handshake outcome. Cancellation retries
// the capture; a capture moves to confirmation.
func (s *Session) CaptureResult(capturedBytes []byte, captured bool) Effect {
	if s.state != StateCaptureRequested {
		return EffectNone
	}
	if !captured {
		return EffectRequestCapture
	}
	s.captured = capturedBytes
	s.state = StateAwaitingConfirmation
	return EffectAwaitConfirmation
}

// Confirm resolves the accept/reject choice. Accepting builds the pair
// draft for persistence; rejecting retries the capture with the timer
// state intact.
func (s *Session) Confirm(accept bool) Effect {
	if s.state != StateAwaitingConfirmation {
		return EffectNone
	}
	if !accept {
		s.captured = nil
		s.state = StateCaptureRequested
		return EffectRequestCapture
	}
	asset, ok := s.Current()
	if !ok {
		return s.Stop()
	}
	duration := s.countdown
	if s.mode == Study {
		duration = s.elapsed
	}
	s.draft = &PairDraft{
		Asset:           asset,
		CapturedBytes:   s.captured,
		DurationSeconds: duration,
	}
	s.captured = nil
	s.state = StateAdvancing
	return EffectPersistPair
}

// Advance moves past a persisted pair: forward wraps to 0 at the end
// without reshuffling, backward clamps at 0.
func (s *Session) Advance() Effect {
	if s.state != StateAdvancing {
		return EffectNone
	}
	s.draft = nil
	if s.pendingStep < 0 {
		if s.index > 0 {
			s.index--
		}
	} else {
		s.index = s.wrap(s.index + 1)
	}
	s.pendingStep = 1
	s.state = StateLoading
	s.resetTimer()
	return EffectLoad
}

// Stop terminates the session from any state, discarding unconfirmed
// capture data. The stop effect fires once; repeated calls are no-ops.
func (s *Session) Stop() Effect {
	if s.state == StateStopped {
		return EffectNone
	}
	s.captured = nil
	s.draft = nil
	s.state = StateStopped
	return EffectStopped
}

func (s *Session) wrap(i int) int {
	if len(s.assets) == 0 {
		return 0
	}
	return i % len(s.assets)
}
