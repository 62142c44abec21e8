package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/croki-app/croki/internal/ui/components"
	"github.com/croki-app/croki/internal/ui/theme"
)

func (p *PracticeScreen) View(width, height int) string {
	var body string
	switch {
	case p.errMsg != "":
		body = theme.Incorrect.Render("✗ "+p.errMsg) + "\n\n" +
			theme.Hint.Render("Esc to go back")
	case p.stopped:
		body = p.summaryView()
	case p.eng == nil:
		body = theme.Hint.Render("Loading deck...")
	case p.awaiting:
		body = p.confirmView()
	case p.capturing:
		body = p.captureView()
	default:
		body = p.timerView(width)
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)
}

func (p *PracticeScreen) timerView(width int) string {
	var lines []string

	lines = append(lines, theme.Subtitle.Render(p.asset.Filename))
	if p.asset.Width > 0 {
		lines = append(lines, theme.Hint.Render(
			fmt.Sprintf("%dx%d · difficulty %d", p.asset.Width, p.asset.Height, p.asset.Difficulty)))
	}
	lines = append(lines, "")

	timer := fmt.Sprintf("%02d:%02d", p.remaining/60, p.remaining%60)
	if p.studyMode {
		timer = fmt.Sprintf("%02d:%02d", p.elapsed/60, p.elapsed%60)
	}
	timerStyle := theme.Title
	if p.paused {
		timerStyle = theme.Incorrect
	}
	lines = append(lines, timerStyle.Render(timer))

	if p.paused {
		lines = append(lines, theme.Hint.Render("paused"))
	} else if !p.studyMode && p.countdown > 0 {
		barWidth := width / 2
		if barWidth > 40 {
			barWidth = 40
		}
		percent := float64(p.remaining) / float64(p.countdown)
		lines = append(lines, components.NewProgressBar("", percent, false, barWidth).View())
	}

	lines = append(lines, "")
	lines = append(lines, theme.Hint.Render(
		fmt.Sprintf("%d drawings kept this session", p.pairsSaved)))

	card := theme.Card.Render(strings.Join(lines, "\n"))
	return card
}

func (p *PracticeScreen) captureView() string {
	return theme.Card.Render(strings.Join([]string{
		theme.Title.Render("Time!"),
		"",
		theme.Body.Render("Export your drawing as an image into:"),
		theme.Selected.Render(p.inboxDir),
		"",
		theme.Hint.Render("the session resumes when the file appears"),
	}, "\n"))
}

func (p *PracticeScreen) confirmView() string {
	keep := components.NewButton("Keep", p.confirmKeep, nil).View()
	retry := components.NewButton("Retry", !p.confirmKeep, nil).View()
	return theme.Card.Render(strings.Join([]string{
		theme.Title.Render("Keep this drawing?"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, keep, "  ", retry),
		"",
		theme.Hint.Render("keeping saves it as a practice pair, retry recaptures"),
	}, "\n"))
}

func (p *PracticeScreen) summaryView() string {
	return theme.Card.Render(strings.Join([]string{
		theme.Title.Render("Session complete"),
		"",
		theme.Correct.Render(fmt.Sprintf("✓ %d drawings kept", p.pairsSaved)),
		"",
		theme.Hint.Render("Esc to go back"),
	}, "\n"))
}
