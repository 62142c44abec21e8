package session

import (
	"context"
	"image"
	"image/color"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/croki-app/croki/internal/capture"
	"github.com/croki-app/croki/internal/codec"
	"github.com/croki-app/croki/internal/deck"
	"github.com/croki-app/croki/internal/imaging"
	"github.com/croki-app/croki/internal/sequencer"
	"github.com/croki-app/croki/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), codec.New(codec.DeriveKey()), log.New(os.Stderr))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func embeddedAsset(t *testing.T, name string) deck.ImageAsset {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < 10; i++ {
		img.Set(i, i, color.RGBA{R: 200, A: 255})
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		t.Fatal(err)
	}
	return deck.ImageAsset{
		Filename:   name,
		Width:      10,
		Height:     10,
		ByteSize:   int64(len(data)),
		Difficulty: 1,
		Source:     deck.Embedded(data),
	}
}

func acceptingProvider(data []byte) capture.Provider {
	return capture.ProviderFunc(func(ctx context.Context) (capture.Outcome, error) {
		return capture.CapturedOutcome(data, image.Rect(0, 0, 100, 100)), nil
	})
}

// drain consumes events until the stream closes or the deadline hits,
// invoking on for each event.
func drain(t *testing.T, events <-chan Event, deadline time.Duration, on func(Event)) {
	t.Helper()
	timeout := time.After(deadline)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			on(ev)
			if ev.Kind == EventStopped {
				// Stream closes right after; keep reading until then.
				for range events {
				}
				return
			}
		case <-timeout:
			t.Fatal("timed out draining engine events")
		}
	}
}

func TestEngineFullTimedCycle(t *testing.T) {
	st := testStore(t)
	eng := NewEngine(Config{
		Assets:       []deck.ImageAsset{embeddedAsset(t, "pose.png")},
		Settings:     store.Settings{CountdownSeconds: 2},
		Store:        st,
		Coordinator:  capture.NewCoordinator(acceptingProvider([]byte("drawn"))),
		Logger:       log.New(os.Stderr),
		Rand:         sequencer.SeededRand(7),
		TickInterval: 5 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go eng.Run(ctx)

	var rendered, confirmRequested, pairSaved, stopped atomic.Bool
	drain(t, eng.Events(), 5*time.Second, func(ev Event) {
		switch ev.Kind {
		case EventRender:
			rendered.Store(true)
			if ev.Asset.Filename != "pose.png" {
				t.Errorf("rendered %s", ev.Asset.Filename)
			}
			if len(ev.Image) == 0 {
				t.Error("render event carries no image")
			}
		case EventAwaitConfirmation:
			confirmRequested.Store(true)
			if string(ev.Captured) != "drawn" {
				t.Errorf("captured = %q", ev.Captured)
			}
			eng.Confirm(true)
		case EventPairSaved:
			if !pairSaved.Swap(true) {
				// First pair is enough for the scenario.
				eng.Stop()
			}
		case EventStopped:
			stopped.Store(true)
		}
	})

	if !rendered.Load() || !confirmRequested.Load() || !pairSaved.Load() || !stopped.Load() {
		t.Fatalf("render=%v confirm=%v saved=%v stopped=%v",
			rendered.Load(), confirmRequested.Load(), pairSaved.Load(), stopped.Load())
	}

	names, err := st.ListPairs()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) == 0 {
		t.Fatal("no pair files written")
	}
	pair, err := st.LoadPair(names[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(pair.CapturedBytes) != "drawn" {
		t.Errorf("pair captured bytes = %q", pair.CapturedBytes)
	}
	if pair.DurationSeconds != 2 {
		t.Errorf("duration = %d, want 2", pair.DurationSeconds)
	}
	if pair.Source.Filename != "pose.png" {
		t.Errorf("source = %+v", pair.Source)
	}

	if got := st.LoadHistory().Count(time.Now()); got < 1 {
		t.Errorf("heatmap for today = %d", got)
	}
}

func TestEngineStopCancelsInFlightCapture(t *testing.T) {
	st := testStore(t)
	started := make(chan struct{})
	blocking := capture.ProviderFunc(func(ctx context.Context) (capture.Outcome, error) {
		close(started)
		<-ctx.Done()
		return capture.Cancelled, ctx.Err()
	})
	eng := NewEngine(Config{
		Assets:       []deck.ImageAsset{embeddedAsset(t, "pose.png")},
		Settings:     store.Settings{CountdownSeconds: 1},
		Store:        st,
		Coordinator:  capture.NewCoordinator(blocking),
		Logger:       log.New(os.Stderr),
		Rand:         sequencer.SeededRand(7),
		TickInterval: 5 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go eng.Run(ctx)

	go func() {
		<-started
		eng.Stop()
	}()

	var stopped bool
	drain(t, eng.Events(), 5*time.Second, func(ev Event) {
		if ev.Kind == EventStopped {
			stopped = true
		}
	})
	if !stopped {
		t.Fatal("engine did not stop")
	}

	names, err := st.ListPairs()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("cancelled capture persisted %d pairs", len(names))
	}
}

func TestEngineSkipsUndecodableAsset(t *testing.T) {
	st := testStore(t)
	broken := deck.ImageAsset{
		Filename:   "broken.png",
		Difficulty: 5, // weighted first under the seeded order
		Source:     deck.Embedded([]byte("not an image")),
	}
	good := embeddedAsset(t, "good.png")

	eng := NewEngine(Config{
		Assets:       []deck.ImageAsset{broken, good},
		Settings:     store.Settings{CountdownSeconds: 60},
		Store:        st,
		Coordinator:  capture.NewCoordinator(acceptingProvider([]byte("x"))),
		Logger:       log.New(os.Stderr),
		Rand:         sequencer.SeededRand(1),
		TickInterval: 5 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go eng.Run(ctx)

	var renderedGood bool
	drain(t, eng.Events(), 5*time.Second, func(ev Event) {
		switch ev.Kind {
		case EventRender:
			if ev.Asset.Filename == "broken.png" {
				t.Error("broken asset was rendered")
			}
			if ev.Asset.Filename == "good.png" && !renderedGood {
				renderedGood = true
				eng.Stop()
			}
		}
	})
	if !renderedGood {
		t.Fatal("good asset never rendered")
	}
}

func TestEngineEmptyDeckStopsImmediately(t *testing.T) {
	st := testStore(t)
	eng := NewEngine(Config{
		Settings:     store.Settings{CountdownSeconds: 5},
		Store:        st,
		Coordinator:  capture.NewCoordinator(acceptingProvider(nil)),
		Logger:       log.New(os.Stderr),
		TickInterval: 5 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go eng.Run(ctx)

	var stopped bool
	drain(t, eng.Events(), 5*time.Second, func(ev Event) {
		if ev.Kind == EventStopped {
			stopped = true
		}
	})
	if !stopped {
		t.Fatal("empty deck should stop at once")
	}
}
