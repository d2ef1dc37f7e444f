package schedule

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	scheduledto "quotawin/internal/modules/schedule/dto"
	"quotawin/internal/ui/theme"
)

type SchedulePort interface {
	Plan(ctx context.Context, input scheduledto.PlanInput) (scheduledto.ScheduleOutput, error)
}

type PlannedMsg struct {
	Out scheduledto.ScheduleOutput
	Err error
}

const timelineWidth = 48

type Model struct {
	port     SchedulePort
	viewport viewport.Model
	plan     scheduledto.ScheduleOutput
	err      error
	planned  bool
	width    int
	height   int
}

func New(port SchedulePort) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)
	return Model{port: port, viewport: vp}
}

func (m Model) Init() tea.Cmd {
	return m.Plan("", "")
}

// Plan lays out windows between start and end. Empty bounds fall back to
// the configured workday.
func (m Model) Plan(start, end string) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		if port == nil {
			return PlannedMsg{Err: fmt.Errorf("schedule planner not configured")}
		}
		out, err := port.Plan(context.Background(), scheduledto.PlanInput{Start: start, End: end})
		return PlannedMsg{Out: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 4
		m.viewport.SetContent(m.render())
		return m, nil
	case PlannedMsg:
		m.planned = true
		m.err = msg.Err
		if msg.Err == nil {
			m.plan = msg.Out
		}
		m.viewport.SetContent(m.render())
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return theme.Pane.
		Width(max(m.width-2, 1)).
		Height(max(m.height-2, 1)).
		Padding(0).
		Render(m.viewport.View())
}

func (m Model) render() string {
	if !m.planned {
		return theme.Muted.Render("Planning…")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Window schedule") + "\n")
	if m.err != nil {
		sb.WriteString(theme.Warning.Render(m.err.Error()) + "\n\n")
		sb.WriteString(theme.Muted.Render("Try :schedule 09:00 17:00"))
		return sb.String()
	}
	p := m.plan
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("%s → %s  (%d min)", p.Start, p.End, p.TotalMinutes)) + "\n\n")
	sb.WriteString("Start windows at  " + theme.Hot.Render(strings.Join(p.StartTimes, "  ")) + "\n\n")
	sb.WriteString(timeline(p) + "\n\n")
	for i, w := range p.Windows {
		sb.WriteString(fmt.Sprintf("  %d. %s → %s\n", i+1, w.Start, w.End))
	}
	if len(p.Windows) > 1 {
		sb.WriteString("\n" + theme.Muted.Render(fmt.Sprintf("slack: leading %d min, trailing %d min, tightest gap %d min", p.LeadingSlack, p.TrailingSlack, p.MinSlack)))
	}
	return sb.String()
}

// timeline draws the interval scaled to timelineWidth with windows marked.
func timeline(p scheduledto.ScheduleOutput) string {
	if p.TotalMinutes <= 0 {
		return ""
	}
	cells := make([]bool, timelineWidth)
	for _, w := range p.Windows {
		from := w.OffsetMinutes * timelineWidth / p.TotalMinutes
		to := (w.OffsetMinutes + w.DurationMinutes) * timelineWidth / p.TotalMinutes
		for i := from; i < to && i < timelineWidth; i++ {
			if i >= 0 {
				cells[i] = true
			}
		}
	}
	var sb strings.Builder
	for _, on := range cells {
		if on {
			sb.WriteString(theme.Good.Render("█"))
		} else {
			sb.WriteString(theme.Muted.Render("·"))
		}
	}
	return sb.String()
}
