package session

import (
	"context"
	"fmt"
	mathrand "math/rand"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/croki-app/croki/internal/capture"
	"github.com/croki-app/croki/internal/deck"
	"github.com/croki-app/croki/internal/imaging"
	"github.com/croki-app/croki/internal/notify"
	"github.com/croki-app/croki/internal/sequencer"
	"github.com/croki-app/croki/internal/store"
)

// Config wires an Engine's collaborators.
type Config struct {
	Assets   []deck.ImageAsset
	Settings store.Settings

	Store       *store.Store
	Coordinator *capture.Coordinator
	Notifier    notify.Notifier
	Logger      *log.Logger

	// Rand seeds the sequencer; nil draws a fresh seed per session.
	Rand *mathrand.Rand

	// TickInterval overrides the 1-second cadence, for tests.
	TickInterval time.Duration
}

type commandKind int

const (
	cmdTogglePause commandKind = iota
	cmdNext
	cmdPrevious
	cmdStop
	cmdConfirm
)

type command struct {
	kind   commandKind
	accept bool
}

type resultKind int

const (
	resLoaded resultKind = iota
	resCapture
	resPersist
)

// result carries a worker completion back to the state-owning loop.
type result struct {
	kind resultKind

	raw   []byte // original asset bytes (load)
	image []byte // display PNG, transforms applied (load)
	err   error

	outcome capture.Outcome // capture

	pairName string // persist
}

// Engine owns a Session on a single goroutine. All state mutation
// happens inside Run; image decode, capture, and persistence run on
// workers reporting back over a channel, so a slow disk never blocks
// the timer tick.
type Engine struct {
	cfg     Config
	session *Session
	logger  *log.Logger

	events  chan Event
	cmds    chan command
	results chan result
	done    chan struct{}

	// currentRaw holds the displayed asset's original bytes for the
	// pair record.
	currentRaw []byte
}

// NewEngine sequences the assets and prepares a ready-to-run engine.
func NewEngine(cfg Config) *Engine {
	rng := cfg.Rand
	if rng == nil {
		rng = sequencer.NewRand()
	}
	ordered := sequencer.Order(cfg.Assets, sequencer.DifficultyWeight, rng)

	mode := Timed
	if cfg.Settings.StudyMode {
		mode = Study
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	if cfg.Notifier != nil {
		cfg.Notifier = notify.Guarded(cfg.Notifier, 3*time.Second)
	}

	return &Engine{
		cfg:     cfg,
		session: New(ordered, mode, cfg.Settings.CountdownSeconds),
		logger:  logger,
		events:  make(chan Event, 32),
		cmds:    make(chan command, 16),
		results: make(chan result, 4),
		done:    make(chan struct{}),
	}
}

// Events is the stream the front end consumes. Closed after
// EventStopped.
func (e *Engine) Events() <-chan Event { return e.events }

// SessionID returns the underlying session's identifier.
func (e *Engine) SessionID() string { return e.session.ID() }

// TogglePause requests a pause flip.
func (e *Engine) TogglePause() { e.send(command{kind: cmdTogglePause}) }

// Next requests a skip forward.
func (e *Engine) Next() { e.send(command{kind: cmdNext}) }

// Previous requests a step back.
func (e *Engine) Previous() { e.send(command{kind: cmdPrevious}) }

// Stop requests termination.
func (e *Engine) Stop() { e.send(command{kind: cmdStop}) }

// Confirm resolves a pending capture confirmation.
func (e *Engine) Confirm(accept bool) { e.send(command{kind: cmdConfirm, accept: accept}) }

func (e *Engine) send(c command) {
	select {
	case e.cmds <- c:
	case <-e.done:
	}
}

// Run drives the session until it stops or ctx is cancelled. It blocks;
// callers run it on its own goroutine and consume Events.
func (e *Engine) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(e.done)
	defer close(e.events)

	interval := e.cfg.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if e.session.Len() == 0 {
		e.finish(e.session.Stop())
		return
	}
	e.startLoad(ctx)

	for {
		select {
		case <-ctx.Done():
			e.finish(e.session.Stop())
			return

		case <-ticker.C:
			eff := e.session.Tick()
			e.emitTimer()
			if e.dispatch(ctx, cancel, eff) {
				return
			}

		case cmd := <-e.cmds:
			var eff Effect
			switch cmd.kind {
			case cmdTogglePause:
				eff = e.session.TogglePause()
				e.emitTimer()
			case cmdNext:
				eff = e.session.Next()
			case cmdPrevious:
				eff = e.session.Previous()
			case cmdStop:
				eff = e.session.Stop()
			case cmdConfirm:
				eff = e.session.Confirm(cmd.accept)
			}
			if e.dispatch(ctx, cancel, eff) {
				return
			}

		case res := <-e.results:
			if e.handleResult(ctx, cancel, res) {
				return
			}
		}
	}
}

// dispatch performs the work an effect asks for. Returns true when the
// session has terminated.
func (e *Engine) dispatch(ctx context.Context, cancel context.CancelFunc, eff Effect) bool {
	switch eff {
	case EffectLoad:
		e.startLoad(ctx)
	case EffectRequestCapture:
		e.startCapture(ctx)
	case EffectAwaitConfirmation:
		e.emit(Event{Kind: EventAwaitConfirmation, Captured: e.session.CapturedBytes()})
	case EffectPersistPair:
		e.startPersist()
	case EffectStopped:
		cancel()
		e.finish(eff)
		return true
	}
	return false
}

func (e *Engine) handleResult(ctx context.Context, cancel context.CancelFunc, res result) bool {
	switch res.kind {
	case resLoaded:
		if res.err != nil {
			e.logger.Warn("skipping unreadable asset", "err", res.err)
			return e.dispatch(ctx, cancel, e.session.SkipBroken())
		}
		e.currentRaw = res.raw
		e.session.Loaded()
		if asset, ok := e.session.Current(); ok {
			e.emit(Event{Kind: EventRender, Asset: asset, Image: res.image})
			e.emitTimer()
		}

	case resCapture:
		if res.err != nil {
			if ctx.Err() != nil {
				return e.dispatch(ctx, cancel, e.session.Stop())
			}
			e.logger.Warn("capture failed, retrying", "err", res.err)
			return e.dispatch(ctx, cancel, e.session.CaptureResult(nil, false))
		}
		return e.dispatch(ctx, cancel,
			e.session.CaptureResult(res.outcome.Bytes, res.outcome.Captured))

	case resPersist:
		if res.err != nil {
			e.logger.Error("persist practice pair", "err", res.err)
		} else {
			e.emit(Event{Kind: EventPairSaved, PairName: res.pairName})
		}
		return e.dispatch(ctx, cancel, e.session.Advance())
	}
	return false
}

// startLoad decodes the current asset off the loop. Transforms follow
// the settings active at session start.
func (e *Engine) startLoad(ctx context.Context) {
	asset, ok := e.session.Current()
	if !ok {
		return
	}
	settings := e.cfg.Settings
	go func() {
		raw, err := assetBytes(asset)
		if err == nil {
			var img []byte
			img, err = renderImage(asset.Filename, raw, settings)
			e.deliver(ctx, result{kind: resLoaded, raw: raw, image: img, err: err})
			return
		}
		e.deliver(ctx, result{kind: resLoaded, err: err})
	}()
}

func (e *Engine) startCapture(ctx context.Context) {
	go func() {
		out, err := e.cfg.Coordinator.Request(ctx)
		e.deliver(ctx, result{kind: resCapture, outcome: out, err: err})
	}()
}

// startPersist writes the accepted pair and bumps today's heatmap.
// Failures are logged, never fatal: the session keeps running.
func (e *Engine) startPersist() {
	draft := e.session.Draft()
	if draft == nil {
		return
	}
	raw := e.currentRaw
	st := e.cfg.Store
	go func() {
		pair := store.PracticePair{
			Timestamp:       time.Now(),
			DurationSeconds: draft.DurationSeconds,
			OriginalBytes:   raw,
			CapturedBytes:   draft.CapturedBytes,
			Source: store.SourceMeta{
				Filename: draft.Asset.Filename,
				Path:     draft.Asset.Source.Path,
				Width:    draft.Asset.Width,
				Height:   draft.Asset.Height,
				ByteSize: draft.Asset.ByteSize,
			},
		}
		name, err := st.SavePair(pair)
		if err == nil {
			hm := st.LoadHistory()
			hm.Add(time.Now(), 1)
			if herr := st.SaveHistory(hm); herr != nil {
				err = fmt.Errorf("update heatmap: %w", herr)
			}
		}
		e.deliver(context.Background(), result{kind: resPersist, pairName: name, err: err})
	}()
}

// deliver hands a worker result to the loop, giving up if the engine
// has already shut down.
func (e *Engine) deliver(ctx context.Context, res result) {
	select {
	case e.results <- res:
	case <-e.done:
	case <-ctx.Done():
		select {
		case e.results <- res:
		case <-e.done:
		}
	}
}

func (e *Engine) finish(eff Effect) {
	if eff != EffectStopped {
		return
	}
	if e.cfg.Notifier != nil {
		e.cfg.Notifier.Notify("Croki", "Practice session complete")
	}
	e.emit(Event{Kind: EventStopped})
}

func (e *Engine) emitTimer() {
	e.emit(Event{
		Kind:      EventTimer,
		Remaining: e.session.Remaining(),
		Elapsed:   e.session.Elapsed(),
		Paused:    e.session.Paused(),
	})
}

// emit never blocks the loop; a full event buffer drops the oldest
// pending event in favor of the new one.
func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		select {
		case <-e.events:
		default:
		}
		select {
		case e.events <- ev:
		default:
		}
	}
}

func assetBytes(a deck.ImageAsset) ([]byte, error) {
	if a.Source.Kind == deck.SourceEmbedded {
		return a.Source.Data, nil
	}
	data, err := os.ReadFile(a.Source.Path)
	if err != nil {
		return nil, &imaging.AssetDecodeError{Filename: a.Filename, Err: err}
	}
	return data, nil
}

func renderImage(filename string, raw []byte, settings store.Settings) ([]byte, error) {
	img, err := imaging.Decode(filename, raw)
	if err != nil {
		return nil, err
	}
	img = imaging.Transform(img, settings.Grayscale, settings.FlipHorizontal)
	return imaging.EncodePNG(img)
}
