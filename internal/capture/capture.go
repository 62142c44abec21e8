// Package capture defines the handshake between a running session and
// the collaborator that produces a drawn capture. The coordinator owns
// the protocol only; how pixels are obtained is a provider concern.
package capture

import (
	"context"
	"image"
)

// MinRegionSide is the smallest acceptable selection edge, in pixels.
// Selections below it are treated as an accidental click and retried.
const MinRegionSide = 8

// Outcome is the result of one capture request.
type Outcome struct {
	Captured bool
	Bytes    []byte
	Rect     image.Rectangle
}

// CapturedOutcome builds a successful outcome.
func CapturedOutcome(data []byte, rect image.Rectangle) Outcome {
	return Outcome{Captured: true, Bytes: data, Rect: rect}
}

// Cancelled is the outcome of a user-aborted capture.
var Cancelled = Outcome{}

// Provider performs the actual region capture. Implementations block
// until the user selects a region or cancels, or ctx is done.
type Provider interface {
	BeginRegionCapture(ctx context.Context) (Outcome, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Outcome, error)

func (f ProviderFunc) BeginRegionCapture(ctx context.Context) (Outcome, error) {
	return f(ctx)
}

// Coordinator drives the request side of the handshake. Undersized
// selections are re-requested transparently; cancellation and errors
// pass through to the session.
type Coordinator struct {
	provider Provider

	// MaxRetries bounds implicit re-requests for undersized regions.
	// Zero means the default of 10.
	MaxRetries int
}

// NewCoordinator wraps a provider.
func NewCoordinator(p Provider) *Coordinator {
	return &Coordinator{provider: p}
}

// Request obtains one capture. A region smaller than MinRegionSide on
// either edge is retried without surfacing to the caller; retries
// exhausting the bound report Cancelled.
func (c *Coordinator) Request(ctx context.Context) (Outcome, error) {
	retries := c.MaxRetries
	if retries <= 0 {
		retries = 10
	}
	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Cancelled, err
		}
		out, err := c.provider.BeginRegionCapture(ctx)
		if err != nil {
			return Cancelled, err
		}
		if !out.Captured {
			return Cancelled, nil
		}
		if out.Rect.Dx() >= MinRegionSide && out.Rect.Dy() >= MinRegionSide {
			return out, nil
		}
	}
	return Cancelled, nil
}
