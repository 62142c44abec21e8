// Package notify defines the outbound notification boundary. Actual
// desktop toast delivery is an external collaborator; everything here
// is best-effort and must never block or fail the caller.
package notify

import (
	"time"

	"github.com/charmbracelet/log"
)

// Notifier delivers a user-facing notification.
type Notifier interface {
	Notify(title, message string)
}

// Func adapts a plain function to Notifier.
type Func func(title, message string)

func (f Func) Notify(title, message string) { f(title, message) }

// LogNotifier writes notifications to a logger. It is the fallback
// when no desktop delivery collaborator is wired in.
type LogNotifier struct {
	Logger *log.Logger
}

func (n *LogNotifier) Notify(title, message string) {
	if n.Logger == nil {
		return
	}
	n.Logger.Info("notify", "title", title, "message", message)
}

// Guarded wraps a notifier so a slow or panicking implementation can
// never stall or crash the caller. Delivery runs on its own goroutine
// and is abandoned after timeout.
func Guarded(inner Notifier, timeout time.Duration) Notifier {
	return Func(func(title, message string) {
		if inner == nil {
			return
		}
		done := make(chan struct{})
		go func() {
			defer func() { _ = recover() }()
			defer close(done)
			inner.Notify(title, message)
		}()
		select {
		case <-done:
		case <-time.After(timeout):
		}
	})
}
