package session

import (
	"testing"

	"github.com/croki-app/croki/internal/deck"
)

func testAssets(names ...string) []deck.ImageAsset {
	out := make([]deck.ImageAsset, 0, len(names))
	for _, n := range names {
		out = append(out, deck.ImageAsset{Filename: n, Difficulty: 1})
	}
	return out
}

// loaded fast-forwards a fresh session out of Loading.
func loaded(t *testing.T, s *Session) {
	t.Helper()
	if s.State() != StateLoading {
		t.Fatalf("state = %v, want loading", s.State())
	}
	s.Loaded()
	if s.State() != StateDisplaying {
		t.Fatalf("state = %v, want displaying", s.State())
	}
}

func TestTimedCountdownReachesCapture(t *testing.T) {
	s := New(testAssets("a.png", "b.png", "c.png"), Timed, 5)
	loaded(t, s)

	for i := 0; i < 4; i++ {
		if eff := s.Tick(); eff != EffectNone {
			t.Fatalf("tick %d effect = %v", i, eff)
		}
		if got := s.Remaining(); got != 4-i {
			t.Fatalf("remaining after tick %d = %d, want %d", i, got, 4-i)
		}
	}

	if eff := s.Tick(); eff != EffectRequestCapture {
		t.Fatalf("final tick effect = %v, want capture request", eff)
	}
	if s.State() != StateCaptureRequested {
		t.Errorf("state = %v", s.State())
	}
	if s.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", s.Remaining())
	}
}

func TestTimedScenarioFullCycle(t *testing.T) {
	// Three images, 5-second timer: expiry, capture, accept, advance.
	s := New(testAssets("a.png", "b.png", "c.png"), Timed, 5)
	loaded(t, s)

	for i := 0; i < 5; i++ {
		s.Tick()
	}
	if s.State() != StateCaptureRequested {
		t.Fatalf("state after 5 ticks = %v", s.State())
	}

	if eff := s.CaptureResult([]byte("drawing"), true); eff != EffectAwaitConfirmation {
		t.Fatalf("capture effect = %v", eff)
	}
	if eff := s.Confirm(true); eff != EffectPersistPair {
		t.Fatalf("confirm effect = %v", eff)
	}

	draft := s.Draft()
	if draft == nil {
		t.Fatal("no pair draft after accept")
	}
	if draft.DurationSeconds != 5 {
		t.Errorf("duration = %d, want 5", draft.DurationSeconds)
	}
	if draft.Asset.Filename != "a.png" {
		t.Errorf("draft asset = %s", draft.Asset.Filename)
	}

	if eff := s.Advance(); eff != EffectLoad {
		t.Fatalf("advance effect = %v", eff)
	}
	if s.Index() != 1 {
		t.Errorf("index = %d, want 1", s.Index())
	}
	if s.Draft() != nil {
		t.Error("draft survives advance")
	}
	if s.Remaining() != 5 {
		t.Errorf("timer not reset: %d", s.Remaining())
	}
}

func TestStudyModeCountsUpAndNeverExpires(t *testing.T) {
	s := New(testAssets("a.png"), Study, 0)
	loaded(t, s)

	for i := 0; i < 100; i++ {
		if eff := s.Tick(); eff != EffectNone {
			t.Fatalf("study tick effect = %v", eff)
		}
	}
	if s.Elapsed() != 100 {
		t.Errorf("elapsed = %d, want 100", s.Elapsed())
	}
	if s.State() != StateDisplaying {
		t.Errorf("state = %v", s.State())
	}
}

func TestStudyRejectTwiceThenAccept(t *testing.T) {
	s := New(testAssets("a.png", "b.png"), Study, 0)
	loaded(t, s)
	s.Tick()
	s.Tick()
	s.Tick()

	// Next routes through the handshake in Study mode.
	if eff := s.Next(); eff != EffectRequestCapture {
		t.Fatalf("next effect = %v", eff)
	}

	for round := 0; round < 2; round++ {
		if eff := s.CaptureResult([]byte("try"), true); eff != EffectAwaitConfirmation {
			t.Fatalf("round %d capture effect = %v", round, eff)
		}
		if eff := s.Confirm(false); eff != EffectRequestCapture {
			t.Fatalf("round %d reject effect = %v", round, eff)
		}
		if s.Draft() != nil {
			t.Fatalf("round %d: rejected capture left a draft", round)
		}
	}

	s.CaptureResult([]byte("final"), true)
	if eff := s.Confirm(true); eff != EffectPersistPair {
		t.Fatalf("accept effect = %v", eff)
	}
	draft := s.Draft()
	if draft == nil || string(draft.CapturedBytes) != "final" {
		t.Fatalf("draft = %+v", draft)
	}
	if draft.DurationSeconds != 3 {
		t.Errorf("study duration = %d, want 3", draft.DurationSeconds)
	}

	s.Advance()
	if s.Index() != 1 {
		t.Errorf("index = %d, want 1", s.Index())
	}
	if s.Elapsed() != 0 {
		t.Errorf("elapsed not reset: %d", s.Elapsed())
	}
}

func TestStudyPreviousRoutesThroughCapture(t *testing.T) {
	s := New(testAssets("a.png", "b.png", "c.png"), Study, 0)
	loaded(t, s)
	s.Next()
	s.CaptureResult([]byte("x"), true)
	s.Confirm(true)
	s.Advance()
	s.Loaded()
	if s.Index() != 1 {
		t.Fatalf("setup index = %d", s.Index())
	}

	if eff := s.Previous(); eff != EffectRequestCapture {
		t.Fatalf("previous effect = %v", eff)
	}
	s.CaptureResult([]byte("y"), true)
	s.Confirm(true)
	s.Advance()
	if s.Index() != 0 {
		t.Errorf("index = %d, want 0 after backward advance", s.Index())
	}
}

func TestCancelledCaptureRetries(t *testing.T) {
	s := New(testAssets("a.png"), Timed, 1)
	loaded(t, s)
	s.Tick()

	if eff := s.CaptureResult(nil, false); eff != EffectRequestCapture {
		t.Fatalf("cancel effect = %v", eff)
	}
	if s.State() != StateCaptureRequested {
		t.Errorf("state = %v", s.State())
	}
}

func TestPauseFreezesTimerExactly(t *testing.T) {
	s := New(testAssets("a.png"), Timed, 10)
	loaded(t, s)
	s.Tick()
	s.Tick()

	s.TogglePause()
	if s.State() != StatePaused || !s.Paused() {
		t.Fatalf("state = %v paused = %v", s.State(), s.Paused())
	}
	for i := 0; i < 50; i++ {
		s.Tick()
	}
	if s.Remaining() != 8 {
		t.Errorf("remaining moved while paused: %d", s.Remaining())
	}

	s.TogglePause()
	if s.State() != StateDisplaying {
		t.Fatalf("state = %v after resume", s.State())
	}
	s.Tick()
	if s.Remaining() != 7 {
		t.Errorf("remaining = %d after resume tick", s.Remaining())
	}
}

func TestResumeAtZeroGoesStraightToCapture(t *testing.T) {
	s := New(testAssets("a.png"), Timed, 2)
	loaded(t, s)
	s.Tick()
	s.TogglePause()
	s.remaining = 0 // timer spent exactly at the pause boundary

	if eff := s.TogglePause(); eff != EffectRequestCapture {
		t.Fatalf("resume-at-zero effect = %v", eff)
	}
	if s.State() != StateCaptureRequested {
		t.Errorf("state = %v", s.State())
	}
}

func TestTimedNextSkipsWithoutCapture(t *testing.T) {
	s := New(testAssets("a.png", "b.png"), Timed, 5)
	loaded(t, s)
	s.Tick()

	if eff := s.Next(); eff != EffectLoad {
		t.Fatalf("next effect = %v", eff)
	}
	if s.Index() != 1 {
		t.Errorf("index = %d", s.Index())
	}
	if s.Remaining() != 5 {
		t.Errorf("timer not reset on skip: %d", s.Remaining())
	}
	if s.Draft() != nil {
		t.Error("skip produced a draft")
	}
}

func TestTimedPreviousClampsAtZero(t *testing.T) {
	s := New(testAssets("a.png", "b.png"), Timed, 5)
	loaded(t, s)

	if eff := s.Previous(); eff != EffectNone {
		t.Fatalf("previous at index 0 effect = %v", eff)
	}
	if s.Index() != 0 || s.State() != StateDisplaying {
		t.Errorf("index = %d state = %v", s.Index(), s.State())
	}

	s.Next()
	s.Loaded()
	if eff := s.Previous(); eff != EffectLoad {
		t.Fatalf("previous effect = %v", eff)
	}
	if s.Index() != 0 {
		t.Errorf("index = %d", s.Index())
	}
}

func TestWrapWithoutReshuffle(t *testing.T) {
	s := New(testAssets("a.png", "b.png", "c.png"), Timed, 5)
	order := func() []string {
		var names []string
		for _, a := range s.assets {
			names = append(names, a.Filename)
		}
		return names
	}
	before := order()

	loaded(t, s)
	s.Next() // -> 1
	s.Loaded()
	s.Next() // -> 2
	s.Loaded()
	s.Next() // wraps -> 0
	if s.Index() != 0 {
		t.Fatalf("index = %d after wrap, want 0", s.Index())
	}

	after := order()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("order changed on wrap: %v -> %v", before, after)
		}
	}
}

func TestSkipBrokenAssetRemovesItFromSequence(t *testing.T) {
	s := New(testAssets("a.png", "b.png"), Timed, 5)

	if eff := s.SkipBroken(); eff != EffectLoad {
		t.Fatalf("skip effect = %v", eff)
	}
	if s.Len() != 1 {
		t.Errorf("len = %d", s.Len())
	}
	if a, _ := s.Current(); a.Filename != "b.png" {
		t.Errorf("current = %s", a.Filename)
	}

	// Last asset broken too: the session stops.
	if eff := s.SkipBroken(); eff != EffectStopped {
		t.Fatalf("final skip effect = %v", eff)
	}
	if s.State() != StateStopped {
		t.Errorf("state = %v", s.State())
	}
}

func TestStopDiscardsUnconfirmedCapture(t *testing.T) {
	s := New(testAssets("a.png"), Timed, 1)
	loaded(t, s)
	s.Tick()
	s.CaptureResult([]byte("unsaved"), true)
	if s.State() != StateAwaitingConfirmation {
		t.Fatalf("state = %v", s.State())
	}

	if eff := s.Stop(); eff != EffectStopped {
		t.Fatalf("stop effect = %v", eff)
	}
	if s.CapturedBytes() != nil || s.Draft() != nil {
		t.Error("stop left capture data behind")
	}

	// Stop is idempotent: the effect fires once.
	if eff := s.Stop(); eff != EffectNone {
		t.Errorf("second stop effect = %v", eff)
	}
}

func TestTimerNeverGoesNegative(t *testing.T) {
	s := New(testAssets("a.png"), Timed, 1)
	loaded(t, s)
	s.Tick()
	for i := 0; i < 10; i++ {
		s.Tick() // capture-requested: ticks ignored
	}
	if s.Remaining() < 0 {
		t.Errorf("remaining = %d", s.Remaining())
	}
}

func TestOperationsIgnoredInWrongStates(t *testing.T) {
	s := New(testAssets("a.png"), Timed, 5)

	// Still Loading: nothing but Loaded/SkipBroken/Stop applies.
	if eff := s.Tick(); eff != EffectNone {
		t.Errorf("tick in loading = %v", eff)
	}
	if eff := s.Confirm(true); eff != EffectNone {
		t.Errorf("confirm in loading = %v", eff)
	}
	if eff := s.CaptureResult(nil, true); eff != EffectNone {
		t.Errorf("capture result in loading = %v", eff)
	}
	if eff := s.Advance(); eff != EffectNone {
		t.Errorf("advance in loading = %v", eff)
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	a := New(testAssets("a.png"), Timed, 5)
	b := New(testAssets("a.png"), Timed, 5)
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("ids: %q vs %q", a.ID(), b.ID())
	}
}
