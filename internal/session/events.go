package session

import "github.com/croki-app/croki/internal/deck"

// EventKind tags engine events for the front end.
type EventKind int

const (
	// EventRender: display Asset using the prepared Image bytes.
	EventRender EventKind = iota
	// EventTimer: the per-item timer or pause flag changed.
	EventTimer
	// EventAwaitConfirmation: present Captured for accept/reject.
	EventAwaitConfirmation
	// EventPairSaved: a practice pair landed on disk as PairName.
	EventPairSaved
	// EventStopped: the session ended; no further events follow.
	EventStopped
)

// Event is one engine notification. Fields are populated per kind.
type Event struct {
	Kind EventKind

	Asset deck.ImageAsset
	Image []byte // display-ready PNG, transforms applied

	Remaining int
	Elapsed   int
	Paused    bool

	Captured []byte

	PairName string
}
