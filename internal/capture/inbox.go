package capture

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/croki-app/croki/internal/imaging"
)

// InboxProvider waits for an image file to appear in a watched
// directory and reports it as the capture. It lets any drawing program
// feed the session: export the finished drawing into the inbox and the
// handshake completes. The consumed file is removed afterwards.
type InboxProvider struct {
	Dir string

	// settleDelay lets the writing program finish before we read.
	settleDelay time.Duration
}

// NewInboxProvider watches dir for dropped images.
func NewInboxProvider(dir string) *InboxProvider {
	return &InboxProvider{Dir: dir, settleDelay: 200 * time.Millisecond}
}

// BeginRegionCapture blocks until an image lands in the inbox or ctx
// is cancelled. Cancellation reports a cancelled outcome, not an error.
func (p *InboxProvider) BeginRegionCapture(ctx context.Context) (Outcome, error) {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return Cancelled, fmt.Errorf("create inbox %s: %w", p.Dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return Cancelled, fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.Dir); err != nil {
		return Cancelled, fmt.Errorf("watch inbox %s: %w", p.Dir, err)
	}

	// A file dropped before the watch started still counts.
	if out, ok, err := p.sweep(); err != nil || ok {
		return out, err
	}

	for {
		select {
		case <-ctx.Done():
			return Cancelled, nil
		case event, ok := <-watcher.Events:
			if !ok {
				return Cancelled, nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isImageFile(event.Name) {
				continue
			}
			time.Sleep(p.settleDelay)
			if out, ok, err := p.consume(event.Name); err != nil || ok {
				return out, err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return Cancelled, nil
			}
			return Cancelled, fmt.Errorf("watch inbox: %w", err)
		}
	}
}

func (p *InboxProvider) sweep() (Outcome, bool, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return Cancelled, false, fmt.Errorf("read inbox %s: %w", p.Dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isImageFile(entry.Name()) {
			continue
		}
		return p.consume(filepath.Join(p.Dir, entry.Name()))
	}
	return Cancelled, false, nil
}

// consume reads and deletes one inbox file. Unreadable files are
// skipped so a half-written export does not abort the handshake.
func (p *InboxProvider) consume(path string) (Outcome, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Cancelled, false, nil
	}
	w, h, err := imaging.Dimensions(data)
	if err != nil {
		return Cancelled, false, nil
	}
	_ = os.Remove(path)
	return CapturedOutcome(data, image.Rect(0, 0, w, h)), true, nil
}

func isImageFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}
