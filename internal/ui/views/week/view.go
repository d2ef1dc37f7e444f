package week

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	recommenddto "quotawin/internal/modules/recommend/dto"
	"quotawin/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type WeekPort interface {
	Week(ctx context.Context, input recommenddto.WeekInput) (recommenddto.WeekOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Out recommenddto.WeekOutput
	Err error
}

// ─── list item ───────────────────────────────────────────────────────────────

type dayItem struct {
	day recommenddto.DayOutput
}

func (i dayItem) Title() string { return capitalize(i.day.Day) }
func (i dayItem) Description() string {
	if len(i.day.Windows) == 0 {
		return "no activity observed"
	}
	desc := fmt.Sprintf("%d active hours", i.day.TotalExpectedHours)
	if i.day.Start != "" {
		desc += "  start " + i.day.Start
	}
	return desc
}
func (i dayItem) FilterValue() string { return i.day.Day }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    WeekPort
	days    int
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	history int
	loading bool
	err     error
	width   int
	height  int
}

func New(port WeekPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Green).BorderForeground(theme.Green)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Green)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Week"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Green)

	return Model{port: port, list: l, detail: vp, spinner: sp, loading: port != nil}
}

func (m Model) Init() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return tea.Batch(m.Load(m.days), m.spinner.Tick)
}

// Load refreshes the week using the last days of history; zero means the
// configured default.
func (m *Model) Load(days int) tea.Cmd {
	m.days = days
	port := m.port
	return func() tea.Msg {
		if port == nil {
			return LoadedMsg{Err: fmt.Errorf("week planner not configured")}
		}
		out, err := port.Week(context.Background(), recommenddto.WeekInput{Days: days})
		return LoadedMsg{Out: out, Err: err}
	}
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case LoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			m.list.Title = "Week: " + msg.Err.Error()
			return m, nil
		}
		m.history = msg.Out.HistoryDays
		m.list.Title = fmt.Sprintf("Week (%d days of history)", msg.Out.HistoryDays)
		items := make([]list.Item, len(msg.Out.Days))
		for i, d := range msg.Out.Days {
			items[i] = dayItem{day: d}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderSelected())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		m.detail.SetContent(m.renderSelected())

		var vCmd tea.Cmd
		m.detail, vCmd = m.detail.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading week…")
	}

	listW := m.width * 35 / 100
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := theme.Pane.
		Width(detailW - 2).
		Height(m.height - 2).
		Padding(0).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 35 / 100
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderSelected() string {
	item, ok := m.list.SelectedItem().(dayItem)
	if !ok {
		return theme.Muted.Render("No history yet. Record usage samples to build a week plan.")
	}
	day := item.day
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(capitalize(day.Day)) + "\n\n")
	if len(day.Windows) == 0 {
		sb.WriteString(theme.Muted.Render("No activity observed on this weekday."))
		return sb.String()
	}
	if day.Start != "" {
		sb.WriteString("Recommended start  " + theme.Hot.Render(day.Start) + "\n")
		sb.WriteString("Confidence         " + theme.Confidence(day.Confidence).Render(fmt.Sprintf("%.0f%%", day.Confidence*100)) + "\n")
	}
	sb.WriteString(fmt.Sprintf("Average usage      %.2f%%\n", day.AvgUsage))
	sb.WriteString(fmt.Sprintf("Active hours       %d\n\n", day.TotalExpectedHours))
	sb.WriteString(theme.Title.Render("Active windows") + "\n")
	for _, w := range day.Windows {
		sb.WriteString(fmt.Sprintf("  %s → %s  %s\n", w.Start, w.End, theme.Muted.Render(fmt.Sprintf("(%dh)", w.EndHour-w.StartHour))))
	}
	return sb.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
