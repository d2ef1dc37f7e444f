package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	usagedto "quotawin/internal/modules/usage/dto"
	"quotawin/internal/ui/components"
	"quotawin/internal/ui/theme"
)

type HistoryPort interface {
	History(ctx context.Context, input usagedto.HistoryInput) ([]usagedto.DailyUsageOutput, error)
}

type LoadedMsg struct {
	Days []usagedto.DailyUsageOutput
	Err  error
}

const DefaultDays = 14

type Model struct {
	port   HistoryPort
	table  table.Model
	days   []usagedto.DailyUsageOutput
	span   int
	err    error
	width  int
	height int
}

func New(port HistoryPort) Model {
	t := table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(theme.Sapphire).BorderForeground(theme.Surface1).Bold(true)
	styles.Selected = styles.Selected.Foreground(theme.Base).Background(theme.Green)
	t.SetStyles(styles)
	return Model{port: port, table: t, span: DefaultDays}
}

func (m Model) Init() tea.Cmd {
	return m.Load(m.span)
}

func (m *Model) Load(days int) tea.Cmd {
	if days <= 0 {
		days = DefaultDays
	}
	m.span = days
	port := m.port
	return func() tea.Msg {
		if port == nil {
			return LoadedMsg{Err: fmt.Errorf("usage history not configured")}
		}
		out, err := port.History(context.Background(), usagedto.HistoryInput{Days: days})
		return LoadedMsg{Days: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(max(msg.Height-6, 3))
		return m, nil
	case LoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.days = msg.Days
			m.table.SetRows(rows(msg.Days))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(fmt.Sprintf("History (last %d days)", m.span)) + "\n")
	if m.err != nil {
		sb.WriteString(theme.Warning.Render(m.err.Error()))
		return sb.String()
	}
	if len(m.days) == 0 {
		sb.WriteString(theme.Muted.Render("No usage recorded in this range."))
		return sb.String()
	}
	sb.WriteString(m.table.View() + "\n")
	sb.WriteString(strings.Repeat(" ", headerOffset()) + components.HourRuler())
	return lipgloss.NewStyle().Width(m.width).Render(sb.String())
}

func columns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Peak", Width: 11},
		{Title: "Avg", Width: 7},
		{Title: "Hrs", Width: 4},
		{Title: "Activity", Width: 24},
	}
}

func headerOffset() int {
	offset := 0
	for _, c := range columns()[:4] {
		offset += c.Width + 2
	}
	return offset
}

func rows(days []usagedto.DailyUsageOutput) []table.Row {
	out := make([]table.Row, 0, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		byHour := make(map[int]float64, len(d.Hours))
		for _, h := range d.Hours {
			byHour[h.Hour] = h.UsagePct
		}
		out = append(out, table.Row{
			d.Date,
			fmt.Sprintf("%02d:00 %3.0f%%", d.PeakHour, d.PeakUsage),
			fmt.Sprintf("%.1f%%", d.AvgUsage),
			fmt.Sprintf("%d", d.TotalActiveHours),
			components.HeatStrip(byHour),
		})
	}
	return out
}
