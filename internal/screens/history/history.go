// Package history renders the practice heatmap and the most recent
// saved pairs.
package history

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/croki-app/croki/internal/history"
	"github.com/croki-app/croki/internal/router"
	"github.com/croki-app/croki/internal/screen"
	"github.com/croki-app/croki/internal/store"
	"github.com/croki-app/croki/internal/ui/components"
	"github.com/croki-app/croki/internal/ui/layout"
	"github.com/croki-app/croki/internal/ui/theme"
)

// heatmapWeeks is how many weeks of history the grid shows.
const heatmapWeeks = 16

type historyLoadedMsg struct {
	heatmap *history.Heatmap
	pairs   []pairRow
}

type pairRow struct {
	name     string
	source   string
	duration int
	memo     string
}

// HistoryScreen displays the practice heatmap and recent pairs.
type HistoryScreen struct {
	st       *store.Store
	heatmap  *history.Heatmap
	pairs    []pairRow
	selected int
	loaded   bool

	editing bool
	input   components.TextInput
	editErr string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates the history screen.
func New(st *store.Store) *HistoryScreen {
	return &HistoryScreen{st: st}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		hm := s.st.LoadHistory()

		names, err := s.st.ListPairs()
		if err != nil {
			return historyLoadedMsg{heatmap: hm}
		}
		if len(names) > 20 {
			names = names[:20]
		}
		var rows []pairRow
		for _, name := range names {
			pair, err := s.st.LoadPair(name)
			if err != nil {
				continue
			}
			rows = append(rows, pairRow{
				name:     name,
				source:   pair.Source.Filename,
				duration: pair.DurationSeconds,
				memo:     pair.Memo,
			})
		}
		return historyLoadedMsg{heatmap: hm, pairs: rows}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save memo"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "M", Description: "Memo"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		s.heatmap = msg.heatmap
		s.pairs = msg.pairs
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		if s.editing {
			return s.updateMemoInput(msg)
		}
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.pairs)-1 {
				s.selected++
			}
		case "m", "enter":
			if s.selected < len(s.pairs) {
				s.editing = true
				s.editErr = ""
				s.input = components.NewTextInput("memo", false, 120)
				s.input.Model.SetValue(s.pairs[s.selected].memo)
				return s, s.input.Init()
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) updateMemoInput(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.editing = false
		return s, nil
	case "enter":
		row := &s.pairs[s.selected]
		memo := s.input.Value()
		if err := s.st.UpdateMemo(row.name, memo); err != nil {
			s.editErr = err.Error()
			return s, nil
		}
		row.memo = memo
		s.editing = false
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *HistoryScreen) View(width, height int) string {
	if !s.loaded {
		return theme.Hint.Width(width).Align(lipgloss.Center).Render("Loading...")
	}

	var sections []string

	total := s.heatmap.Total()
	sections = append(sections, theme.Subtitle.Width(width).Render(
		fmt.Sprintf("%d drawings across %d practice days", total, len(s.heatmap.Dates()))))
	sections = append(sections, "")
	sections = append(sections, lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(renderHeatmap(s.heatmap, time.Now())))
	sections = append(sections, "")
	sections = append(sections, s.renderPairs(width))
	if s.editing {
		sections = append(sections, "")
		sections = append(sections, "  "+theme.Body.Render("Memo: ")+s.input.View())
		if s.editErr != "" {
			sections = append(sections, "  "+theme.Incorrect.Render(s.editErr))
		}
	}

	content := strings.Join(sections, "\n")
	return lipgloss.NewStyle().Width(width).Height(height).Render(content)
}

func (s *HistoryScreen) renderPairs(width int) string {
	if len(s.pairs) == 0 {
		return theme.Hint.Width(width).Align(lipgloss.Center).Render("no saved pairs yet")
	}

	var lines []string
	lines = append(lines, theme.Body.Bold(true).Render("  Recent pairs"))
	for i, row := range s.pairs {
		label := fmt.Sprintf("%s  %s  %ds", row.name, row.source, row.duration)
		if row.memo != "" {
			label += "  · " + row.memo
		}
		if i == s.selected {
			lines = append(lines, theme.Selected.Render("  ▸ "+label))
		} else {
			lines = append(lines, theme.Unselected.Render("    "+label))
		}
	}
	return strings.Join(lines, "\n")
}

// levelStyles indexes the heatmap bucket colors, empty to busiest.
var levelStyles = [5]lipgloss.Style{
	lipgloss.NewStyle().Foreground(theme.Border),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#3A5A40")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#588157")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#81B29A")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("#D8F3DC")),
}

// renderHeatmap draws a GitHub-style week-column grid of the last
// heatmapWeeks weeks ending at now.
func renderHeatmap(hm *history.Heatmap, now time.Time) string {
	// Align the final column to the week containing now, Monday first.
	end := now
	daysFromMonday := (int(end.Weekday()) + 6) % 7
	monday := end.AddDate(0, 0, -daysFromMonday)
	start := monday.AddDate(0, 0, -7*(heatmapWeeks-1))

	var rows [7]strings.Builder
	for week := 0; week < heatmapWeeks; week++ {
		for dow := 0; dow < 7; dow++ {
			day := start.AddDate(0, 0, week*7+dow)
			if day.After(now) {
				rows[dow].WriteString("  ")
				continue
			}
			count := hm.Count(day)
			rows[dow].WriteString(levelStyles[history.Level(count)].Render("■ "))
		}
	}

	labels := [7]string{"Mon", "", "Wed", "", "Fri", "", "Sun"}
	var out []string
	for dow := 0; dow < 7; dow++ {
		label := theme.Hint.Render(fmt.Sprintf("%-4s", labels[dow]))
		out = append(out, label+rows[dow].String())
	}
	return strings.Join(out, "\n")
}
