package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	collectordto "quotawin/internal/modules/collector/dto"
	recommenddto "quotawin/internal/modules/recommend/dto"
	scheduledto "quotawin/internal/modules/schedule/dto"
	syncdto "quotawin/internal/modules/sync/dto"
	usagedto "quotawin/internal/modules/usage/dto"
	"quotawin/internal/ui/components"
	"quotawin/internal/ui/theme"
	historyview "quotawin/internal/ui/views/history"
	scheduleview "quotawin/internal/ui/views/schedule"
	weekview "quotawin/internal/ui/views/week"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type RecommendPort interface {
	Recommend(ctx context.Context, input recommenddto.RecommendInput) (recommenddto.RecommendationOutput, error)
	Week(ctx context.Context, input recommenddto.WeekInput) (recommenddto.WeekOutput, error)
	ExportPlan(ctx context.Context, input recommenddto.ExportInput) (recommenddto.ExportOutput, error)
}

type SchedulePort interface {
	Plan(ctx context.Context, input scheduledto.PlanInput) (scheduledto.ScheduleOutput, error)
}

type UsagePort interface {
	History(ctx context.Context, input usagedto.HistoryInput) ([]usagedto.DailyUsageOutput, error)
}

type SyncPort interface {
	Push(ctx context.Context) (syncdto.PushOutput, error)
	Pull(ctx context.Context) (syncdto.PullOutput, error)
}

type CollectorPort interface {
	Run(ctx context.Context, name string) ([]collectordto.RunResult, error)
}

// Ports groups everything the model talks to. Nil ports disable the
// commands that need them.
type Ports struct {
	Recommend RecommendPort
	Schedule  SchedulePort
	Usage     UsagePort
	Sync      SyncPort
	Collector CollectorPort
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabWeek tabID = iota
	tabSchedule
	tabHistory
	tabCount
)

var tabLabels = [tabCount]string{
	"Week", "Schedule", "History",
}

// ─── async messages ───────────────────────────────────────────────────────────

type recommendationMsg struct {
	out recommenddto.RecommendationOutput
	err error
}

type exportedMsg struct {
	out recommenddto.ExportOutput
	err error
}

type syncedMsg struct {
	status string
	err    error
}

type collectedMsg struct {
	results []collectordto.RunResult
	err     error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette. Rendering of each tab is delegated to sub-views.
type Model struct {
	ports Ports

	weekView     weekview.Model
	scheduleView scheduleview.Model
	historyView  historyview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	rec       recommenddto.RecommendationOutput
	hasRec    bool
	status    string
	width     int
	height    int
}

func NewModel(ports Ports) Model {
	var weekPort weekview.WeekPort
	if ports.Recommend != nil {
		weekPort = ports.Recommend
	}
	var schedulePort scheduleview.SchedulePort
	if ports.Schedule != nil {
		schedulePort = ports.Schedule
	}
	var historyPort historyview.HistoryPort
	if ports.Usage != nil {
		historyPort = ports.Usage
	}
	return Model{
		ports:        ports,
		weekView:     weekview.New(weekPort),
		scheduleView: scheduleview.New(schedulePort),
		historyView:  historyview.New(historyPort),
		activeTab:    tabWeek,
		keys:         defaultKeys(),
		help:         help.New(),
		palette:      components.NewPalette(),
		status:       "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.weekView.Init(),
		m.scheduleView.Init(),
		m.historyView.Init(),
		m.recommendCmd(0),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case recommendationMsg:
		if msg.err != nil {
			m.status = "recommendation: " + msg.err.Error()
			m.hasRec = false
		} else {
			m.rec = msg.out
			m.hasRec = msg.out.Available
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("plan written to %s (start %s)", msg.out.Path, msg.out.Start)
		}
		return m, nil

	case syncedMsg:
		if msg.err != nil {
			m.status = "sync failed: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		return m, tea.Batch(m.refreshCmds()...)

	case collectedMsg:
		if msg.err != nil {
			m.status = "collector run failed: " + msg.err.Error()
			return m, nil
		}
		m.status = summarizeRuns(msg.results)
		return m, tea.Batch(m.refreshCmds()...)

	// Sub-view results are routed regardless of the active tab.
	case weekview.LoadedMsg:
		var cmd tea.Cmd
		m.weekView, cmd = m.weekView.Update(msg)
		return m, cmd

	case scheduleview.PlannedMsg:
		var cmd tea.Cmd
		m.scheduleView, cmd = m.scheduleView.Update(msg)
		if msg.Err != nil {
			m.status = "schedule: " + msg.Err.Error()
		}
		return m, cmd

	case historyview.LoadedMsg:
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.activeTab == tabWeek && m.weekView.Filtering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "r":
			m.status = "refreshing"
			return m, tea.Batch(m.refreshCmds()...)
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabWeek:
		m.weekView, tabCmd = m.weekView.Update(msg)
	case tabSchedule:
		m.scheduleView, tabCmd = m.scheduleView.Update(msg)
	case tabHistory:
		m.historyView, tabCmd = m.historyView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabWeek:
		return m.weekView.View()
	case tabSchedule:
		return m.scheduleView.View()
	case tabHistory:
		return m.historyView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "quotawin  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.hasRec {
		badge := theme.Hot.Render("▶ start "+m.rec.Start) + " " +
			theme.Confidence(m.rec.Confidence).Render(fmt.Sprintf("%.0f%%", m.rec.Confidence*100))
		left = badge + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "week":
		days, ok := m.optionalDays(parts)
		if !ok {
			return m, nil
		}
		m.activeTab = tabWeek
		return m, tea.Batch(m.weekView.Load(days), m.recommendCmd(days))

	case "history":
		days, ok := m.optionalDays(parts)
		if !ok {
			return m, nil
		}
		m.activeTab = tabHistory
		return m, m.historyView.Load(days)

	case "schedule":
		start, end := "", ""
		if len(parts) >= 2 {
			start = parts[1]
		}
		if len(parts) >= 3 {
			end = parts[2]
		}
		m.activeTab = tabSchedule
		return m, m.scheduleView.Plan(start, end)

	case "recommend":
		days, ok := m.optionalDays(parts)
		if !ok {
			return m, nil
		}
		return m, m.recommendCmd(days)

	case "export":
		if len(parts) < 2 {
			m.status = "usage: export <path>"
			return m, nil
		}
		return m, m.exportCmd(parts[1])

	case "sync:push":
		m.status = "pushing…"
		return m, m.pushCmd()

	case "sync:pull":
		m.status = "pulling…"
		return m, m.pullCmd()

	case "collector:run":
		name := ""
		if len(parts) >= 2 {
			name = parts[1]
		}
		m.status = "running collectors…"
		return m, m.collectCmd(name)

	default:
		names := make([]string, 0, len(components.PaletteCommands))
		for _, c := range components.PaletteCommands {
			names = append(names, c.Name)
		}
		m.status = "unknown command: " + parts[0] + " (try " + strings.Join(names, ", ") + ")"
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) optionalDays(parts []string) (int, bool) {
	if len(parts) < 2 {
		return 0, true
	}
	days, err := strconv.Atoi(parts[1])
	if err != nil || days <= 0 {
		m.status = "days must be a positive integer"
		return 0, false
	}
	return days, true
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.weekView, _ = m.weekView.Update(sz)
	m.scheduleView, _ = m.scheduleView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
}

func (m *Model) refreshCmds() []tea.Cmd {
	return []tea.Cmd{
		m.weekView.Load(0),
		m.historyView.Load(0),
		m.recommendCmd(0),
	}
}

func summarizeRuns(results []collectordto.RunResult) string {
	if len(results) == 0 {
		return "no enabled collectors"
	}
	imported, failed := 0, 0
	for _, r := range results {
		imported += r.Imported
		if r.Error != "" {
			failed++
		}
	}
	status := fmt.Sprintf("collected %d samples from %d collectors", imported, len(results))
	if failed > 0 {
		status += fmt.Sprintf(" (%d failed)", failed)
	}
	return status
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) recommendCmd(days int) tea.Cmd {
	port := m.ports.Recommend
	if port == nil {
		return nil
	}
	return func() tea.Msg {
		out, err := port.Recommend(context.Background(), recommenddto.RecommendInput{Days: days})
		return recommendationMsg{out: out, err: err}
	}
}

func (m Model) exportCmd(path string) tea.Cmd {
	port := m.ports.Recommend
	return func() tea.Msg {
		if port == nil {
			return exportedMsg{err: fmt.Errorf("recommendations not configured")}
		}
		out, err := port.ExportPlan(context.Background(), recommenddto.ExportInput{Path: path})
		return exportedMsg{out: out, err: err}
	}
}

func (m Model) pushCmd() tea.Cmd {
	port := m.ports.Sync
	return func() tea.Msg {
		if port == nil {
			return syncedMsg{err: fmt.Errorf("sync not configured")}
		}
		out, err := port.Push(context.Background())
		if err != nil {
			return syncedMsg{err: err}
		}
		if out.Stale {
			return syncedMsg{status: fmt.Sprintf("push skipped: %s holds a newer snapshot", out.Location)}
		}
		return syncedMsg{status: fmt.Sprintf("pushed %d hours to %s (%d machines)", out.Hours, out.Location, out.Machines)}
	}
}

func (m Model) pullCmd() tea.Cmd {
	port := m.ports.Sync
	return func() tea.Msg {
		if port == nil {
			return syncedMsg{err: fmt.Errorf("sync not configured")}
		}
		out, err := port.Pull(context.Background())
		if err != nil {
			return syncedMsg{err: err}
		}
		if !out.RemoteFound {
			return syncedMsg{status: "no sync document at " + out.Location}
		}
		return syncedMsg{status: fmt.Sprintf("pulled %d machines from %s", len(out.Imported), out.Location)}
	}
}

func (m Model) collectCmd(name string) tea.Cmd {
	port := m.ports.Collector
	return func() tea.Msg {
		if port == nil {
			return collectedMsg{err: fmt.Errorf("collectors not configured")}
		}
		results, err := port.Run(context.Background(), name)
		return collectedMsg{results: results, err: err}
	}
}
