package home

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/croki-app/croki/internal/history"
	"github.com/croki-app/croki/internal/router"
	"github.com/croki-app/croki/internal/screen"
	historyscreen "github.com/croki-app/croki/internal/screens/history"
	"github.com/croki-app/croki/internal/screens/practice"
	"github.com/croki-app/croki/internal/store"
	"github.com/croki-app/croki/internal/ui/components"
	"github.com/croki-app/croki/internal/ui/theme"
)

// HomeScreen is the application's entry screen.
type HomeScreen struct {
	menu components.Menu

	deckName   string
	deckSet    bool
	totalPairs int
	todayCount int
	streak     int
}

var _ screen.Screen = (*HomeScreen)(nil)

// New builds the home screen. Stats come from the persisted heatmap;
// the active deck comes from settings.
func New(st *store.Store) *HomeScreen {
	settings := st.LoadSettings()
	hm := st.LoadHistory()

	h := &HomeScreen{
		deckName:   settings.DeckPath,
		deckSet:    settings.DeckPath != "",
		totalPairs: hm.Total(),
		todayCount: hm.Count(time.Now()),
		streak:     currentStreak(hm),
	}

	items := []components.MenuItem{
		{Label: "START PRACTICE", Disabled: !h.deckSet, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: practice.New(st, false)}
			}
		}},
		{Label: "STUDY SESSION", Disabled: !h.deckSet, Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: practice.New(st, true)}
			}
		}},
		{Label: "HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: historyscreen.New(st)}
			}
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Width(width).Render("C R O K I"))
	sections = append(sections, theme.Subtitle.Width(width).Render("timed figure-drawing practice"))
	sections = append(sections, "")

	stats := fmt.Sprintf("✎ %d drawings   ★ %d today   ♥ %d-day streak",
		h.totalPairs, h.todayCount, h.streak)
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(width).
		Align(lipgloss.Center).
		Render(stats))

	if h.deckSet {
		sections = append(sections, theme.Hint.Width(width).Align(lipgloss.Center).
			Render("deck: "+h.deckName))
	} else {
		sections = append(sections, theme.Hint.Width(width).Align(lipgloss.Center).
			Render("no deck configured — run `croki deck` first"))
	}
	sections = append(sections, "")

	menu := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(h.menu.View())
	sections = append(sections, menu)

	content := strings.Join(sections, "\n")
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// currentStreak counts consecutive practice days ending today or
// yesterday.
func currentStreak(hm *history.Heatmap) int {
	day := time.Now()
	if hm.Count(day) == 0 {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for hm.Count(day) > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
