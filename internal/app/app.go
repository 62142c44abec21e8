// Package app is the Bubble Tea shell: a screen router framed by the
// shared header and footer.
package app

import (
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/croki-app/croki/internal/router"
	"github.com/croki-app/croki/internal/screen"
	"github.com/croki-app/croki/internal/screens/home"
	"github.com/croki-app/croki/internal/store"
	"github.com/croki-app/croki/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	st     *store.Store
	router *router.Router
	width  int
	height int

	totalPairs int
	todayCount int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(st *store.Store) AppModel {
	hm := st.LoadHistory()
	return AppModel{
		st:         st,
		router:     router.New(home.New(st)),
		totalPairs: hm.Total(),
		todayCount: hm.Count(time.Now()),
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}

	case router.PopScreenMsg:
		// Returning to a screen after a session: refresh header stats.
		hm := m.st.LoadHistory()
		m.totalPairs = hm.Total()
		m.todayCount = hm.Count(time.Now())
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.totalPairs, m.todayCount, m.width)

	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if provider, ok := active.(screen.KeyHintProvider); ok {
		footerHints = provider.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program over an opened store.
func Run(st *store.Store) error {
	p := tea.NewProgram(newAppModel(st))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
