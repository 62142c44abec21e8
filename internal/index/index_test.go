package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/croki-app/croki/internal/codec"
	"github.com/croki-app/croki/internal/store"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func entry(name, source string, ts time.Time, duration int) Entry {
	return Entry{Name: name, Source: source, Timestamp: ts, DurationSeconds: duration}
}

func TestPutAndRecent(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		name := []string{"a.ckp", "b.ckp", "c.ckp"}[i]
		if err := ix.Put(ctx, entry(name, "pose.png", base.Add(time.Duration(i)*time.Hour), 60)); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	got, err := ix.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries", len(got))
	}
	if got[0].Name != "c.ckp" || got[1].Name != "b.ckp" {
		t.Errorf("order: %s, %s", got[0].Name, got[1].Name)
	}
	if !got[0].Timestamp.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("timestamp = %v", got[0].Timestamp)
	}
}

func TestPutUpsertsMemo(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	e := entry("a.ckp", "pose.png", ts, 60)
	if err := ix.Put(ctx, e); err != nil {
		t.Fatal(err)
	}
	e.Memo = "loosen the wrist"
	if err := ix.Put(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := ix.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("upsert duplicated: %d rows", len(got))
	}
	if got[0].Memo != "loosen the wrist" {
		t.Errorf("memo = %q", got[0].Memo)
	}
}

func TestBySourceAndStats(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	ix.Put(ctx, entry("a.ckp", "pose.png", ts, 30))
	ix.Put(ctx, entry("b.ckp", "pose.png", ts.Add(time.Hour), 60))
	ix.Put(ctx, entry("c.ckp", "hand.png", ts, 90))

	bySource, err := ix.BySource(ctx, "pose.png")
	if err != nil {
		t.Fatal(err)
	}
	if len(bySource) != 2 || bySource[0].Name != "b.ckp" {
		t.Errorf("BySource = %+v", bySource)
	}

	stats, err := ix.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalPairs != 3 || stats.TotalSeconds != 180 || stats.Sources != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDeleteAndClear(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	ts := time.Now().UTC()

	ix.Put(ctx, entry("a.ckp", "pose.png", ts, 30))
	ix.Put(ctx, entry("b.ckp", "pose.png", ts, 30))

	if err := ix.Delete(ctx, "a.ckp"); err != nil {
		t.Fatal(err)
	}
	got, _ := ix.Recent(ctx, 10)
	if len(got) != 1 {
		t.Fatalf("after delete: %d rows", len(got))
	}

	if err := ix.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	got, _ = ix.Recent(ctx, 10)
	if len(got) != 0 {
		t.Fatalf("after clear: %d rows", len(got))
	}
}

func TestRebuildFromStore(t *testing.T) {
	logger := log.New(os.Stderr)
	st, err := store.Open(t.TempDir(), codec.New(codec.DeriveKey()), logger)
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := st.SavePair(store.PracticePair{
			Timestamp:       base.Add(time.Duration(i) * time.Hour),
			DurationSeconds: 45,
			CapturedBytes:   []byte("x"),
			Source:          store.SourceMeta{Filename: "pose.png"},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	// A junk pair file must be skipped, not fatal.
	if err := os.WriteFile(filepath.Join(st.PairDir(), "junk"+store.PairExt), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	ix := openTestIndex(t)
	n, err := Rebuild(context.Background(), ix, st, logger)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if n != 2 {
		t.Errorf("indexed %d pairs, want 2", n)
	}

	stats, err := ix.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalPairs != 2 || stats.TotalSeconds != 90 {
		t.Errorf("stats = %+v", stats)
	}
}
