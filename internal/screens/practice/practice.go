// Package practice hosts a running session inside the TUI: it loads
// the configured deck, starts the engine, translates its events into
// Bubble Tea messages, and maps keys onto session commands.
package practice

import (
	"context"
	"fmt"
	"path/filepath"

	tea "charm.land/bubbletea/v2"

	"github.com/croki-app/croki/internal/capture"
	"github.com/croki-app/croki/internal/deck"
	"github.com/croki-app/croki/internal/notify"
	"github.com/croki-app/croki/internal/router"
	"github.com/croki-app/croki/internal/screen"
	"github.com/croki-app/croki/internal/session"
	"github.com/croki-app/croki/internal/store"
	"github.com/croki-app/croki/internal/ui/layout"
)

// deckReadyMsg is sent when the deck has loaded and the engine is up.
type deckReadyMsg struct {
	eng       *session.Engine
	cancel    context.CancelFunc
	inboxDir  string
	count     int
	countdown int
	err       error
}

// engineEventMsg wraps one engine event; ok is false once the stream
// closed.
type engineEventMsg struct {
	ev session.Event
	ok bool
}

// PracticeScreen drives one session.
type PracticeScreen struct {
	st        *store.Store
	studyMode bool

	eng      *session.Engine
	cancel   context.CancelFunc
	events   <-chan session.Event
	inboxDir string

	asset     deck.ImageAsset
	total     int
	countdown int
	remaining int
	elapsed   int
	paused    bool

	awaiting    bool
	confirmKeep bool
	capturing   bool
	pairsSaved  int
	stopped     bool
	errMsg      string
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

// New builds a practice screen. studyMode forces Study regardless of
// the persisted setting.
func New(st *store.Store, studyMode bool) *PracticeScreen {
	return &PracticeScreen{st: st, studyMode: studyMode}
}

func (p *PracticeScreen) Init() tea.Cmd {
	return func() tea.Msg {
		settings := p.st.LoadSettings()
		settings.StudyMode = p.studyMode

		d, err := p.st.LoadDeck(settings.DeckPath)
		if err != nil {
			return deckReadyMsg{err: fmt.Errorf("load deck: %w", err)}
		}
		if d.Len() == 0 {
			return deckReadyMsg{err: fmt.Errorf("deck %s is empty", settings.DeckPath)}
		}

		inboxDir := filepath.Join(p.st.Dir(), "inbox")
		coordinator := capture.NewCoordinator(capture.NewInboxProvider(inboxDir))

		eng := session.NewEngine(session.Config{
			Assets:      d.Assets(),
			Settings:    settings,
			Store:       p.st,
			Coordinator: coordinator,
			Notifier:    notify.Func(func(string, string) {}),
		})

		ctx, cancel := context.WithCancel(context.Background())
		go eng.Run(ctx)

		return deckReadyMsg{
			eng:       eng,
			cancel:    cancel,
			inboxDir:  inboxDir,
			count:     d.Len(),
			countdown: settings.CountdownSeconds,
		}
	}
}

func (p *PracticeScreen) waitEvent() tea.Cmd {
	events := p.events
	return func() tea.Msg {
		ev, ok := <-events
		return engineEventMsg{ev: ev, ok: ok}
	}
}

func (p *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case deckReadyMsg:
		if msg.err != nil {
			p.errMsg = msg.err.Error()
			return p, nil
		}
		p.eng = msg.eng
		p.cancel = msg.cancel
		p.events = msg.eng.Events()
		p.inboxDir = msg.inboxDir
		p.total = msg.count
		p.countdown = msg.countdown
		return p, p.waitEvent()

	case engineEventMsg:
		if !msg.ok {
			// Stream closed without a stop event; treat it the same so
			// esc still exits the screen.
			p.stopped = true
			return p, nil
		}
		switch msg.ev.Kind {
		case session.EventRender:
			p.asset = msg.ev.Asset
			p.awaiting = false
			p.capturing = false
		case session.EventTimer:
			p.remaining = msg.ev.Remaining
			p.elapsed = msg.ev.Elapsed
			p.paused = msg.ev.Paused
			if p.remaining == 0 && !p.studyMode && !p.awaiting {
				p.capturing = true
			}
		case session.EventAwaitConfirmation:
			p.awaiting = true
			p.confirmKeep = true
			p.capturing = false
		case session.EventPairSaved:
			p.pairsSaved++
		case session.EventStopped:
			p.stopped = true
			return p, nil
		}
		return p, p.waitEvent()

	case tea.KeyMsg:
		return p, p.handleKey(msg.String())
	}
	return p, nil
}

func (p *PracticeScreen) handleKey(key string) tea.Cmd {
	if p.errMsg != "" || p.stopped {
		if key == "esc" || key == "enter" {
			p.shutdown()
			return func() tea.Msg { return router.PopScreenMsg{} }
		}
		return nil
	}
	if p.eng == nil {
		return nil
	}

	if p.awaiting {
		switch key {
		case "left", "right", "tab":
			p.confirmKeep = !p.confirmKeep
		case "y":
			p.eng.Confirm(true)
		case "n":
			p.eng.Confirm(false)
		case "enter":
			p.eng.Confirm(p.confirmKeep)
		}
		return nil
	}

	switch key {
	case " ", "space":
		p.eng.TogglePause()
	case "n", "right":
		p.eng.Next()
	case "p", "left":
		p.eng.Previous()
	case "s", "esc":
		p.eng.Stop()
	}
	return nil
}

func (p *PracticeScreen) shutdown() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *PracticeScreen) Title() string {
	if p.studyMode {
		return "Study"
	}
	return "Practice"
}

func (p *PracticeScreen) KeyHints() []layout.KeyHint {
	if p.awaiting {
		return []layout.KeyHint{
			{Key: "←/→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "Y", Description: "Keep"},
			{Key: "N", Description: "Retry"},
		}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Pause"},
		{Key: "N/→", Description: "Skip"},
		{Key: "P/←", Description: "Back"},
		{Key: "S", Description: "Stop"},
	}
}
