package capture

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/croki-app/croki/internal/imaging"
)

func TestCoordinatorPassesThroughValidCapture(t *testing.T) {
	want := CapturedOutcome([]byte("pixels"), image.Rect(0, 0, 100, 80))
	c := NewCoordinator(ProviderFunc(func(ctx context.Context) (Outcome, error) {
		return want, nil
	}))

	got, err := c.Request(context.Background())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if !got.Captured || string(got.Bytes) != "pixels" || got.Rect != want.Rect {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCoordinatorRetriesUndersizedRegion(t *testing.T) {
	calls := 0
	c := NewCoordinator(ProviderFunc(func(ctx context.Context) (Outcome, error) {
		calls++
		if calls < 3 {
			// Accidental click: a tiny drag.
			return CapturedOutcome([]byte("x"), image.Rect(0, 0, 2, 2)), nil
		}
		return CapturedOutcome([]byte("drawing"), image.Rect(0, 0, 200, 150)), nil
	}))

	got, err := c.Request(context.Background())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if calls != 3 {
		t.Errorf("provider called %d times, want 3", calls)
	}
	if !got.Captured || string(got.Bytes) != "drawing" {
		t.Errorf("got %+v", got)
	}
}

func TestCoordinatorRetryBound(t *testing.T) {
	calls := 0
	c := NewCoordinator(ProviderFunc(func(ctx context.Context) (Outcome, error) {
		calls++
		return CapturedOutcome([]byte("x"), image.Rect(0, 0, 1, 1)), nil
	}))
	c.MaxRetries = 3

	got, err := c.Request(context.Background())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if got.Captured {
		t.Error("expected cancelled outcome after exhausting retries")
	}
	if calls != 4 {
		t.Errorf("provider called %d times, want 4", calls)
	}
}

func TestCoordinatorCancellationPassesThrough(t *testing.T) {
	c := NewCoordinator(ProviderFunc(func(ctx context.Context) (Outcome, error) {
		return Cancelled, nil
	}))

	got, err := c.Request(context.Background())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if got.Captured {
		t.Error("expected cancelled outcome")
	}
}

func TestCoordinatorProviderError(t *testing.T) {
	boom := errors.New("capture backend gone")
	c := NewCoordinator(ProviderFunc(func(ctx context.Context) (Outcome, error) {
		return Cancelled, boom
	}))

	_, err := c.Request(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestCoordinatorContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewCoordinator(ProviderFunc(func(ctx context.Context) (Outcome, error) {
		t.Fatal("provider should not be called with a dead context")
		return Cancelled, nil
	}))

	_, err := c.Request(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func writeTestPNG(t *testing.T, path string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 20, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 10, A: 255})
		}
	}
	data, err := imaging.EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return data
}

func TestInboxProviderPicksUpDroppedFile(t *testing.T) {
	dir := t.TempDir()
	p := NewInboxProvider(dir)
	p.settleDelay = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		out Outcome
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := p.BeginRegionCapture(ctx)
		done <- result{out, err}
	}()

	time.Sleep(100 * time.Millisecond)
	data := writeTestPNG(t, filepath.Join(dir, "drawing.png"))

	res := <-done
	if res.err != nil {
		t.Fatalf("BeginRegionCapture: %v", res.err)
	}
	if !res.out.Captured {
		t.Fatal("expected captured outcome")
	}
	if len(res.out.Bytes) != len(data) {
		t.Errorf("got %d bytes, want %d", len(res.out.Bytes), len(data))
	}
	if res.out.Rect.Dx() != 20 || res.out.Rect.Dy() != 16 {
		t.Errorf("rect = %v, want 20x16", res.out.Rect)
	}
	if _, err := os.Stat(filepath.Join(dir, "drawing.png")); !os.IsNotExist(err) {
		t.Error("consumed file should be removed from the inbox")
	}
}

func TestInboxProviderSweepsPreexistingFile(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "already-there.png"))

	p := NewInboxProvider(dir)
	out, err := p.BeginRegionCapture(context.Background())
	if err != nil {
		t.Fatalf("BeginRegionCapture: %v", err)
	}
	if !out.Captured {
		t.Fatal("expected captured outcome from preexisting file")
	}
}

func TestInboxProviderCancellation(t *testing.T) {
	dir := t.TempDir()
	p := NewInboxProvider(dir)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	out, err := p.BeginRegionCapture(ctx)
	if err != nil {
		t.Fatalf("BeginRegionCapture: %v", err)
	}
	if out.Captured {
		t.Error("expected cancelled outcome")
	}
}

func TestInboxProviderIgnoresNonImageFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".hidden.png"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewInboxProvider(dir)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	out, err := p.BeginRegionCapture(ctx)
	if err != nil {
		t.Fatalf("BeginRegionCapture: %v", err)
	}
	if out.Captured {
		t.Error("non-image files should not complete the handshake")
	}
}
