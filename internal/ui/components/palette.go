package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"quotawin/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command line with its command name
// already completed.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

// PaletteCommand describes one entry of the palette. The app dispatches on
// Name, so this list and app/model.go executePalette change together.
type PaletteCommand struct {
	Name string
	Args string
	Help string
}

var PaletteCommands = []PaletteCommand{
	{Name: "week", Args: "[days]", Help: "active windows per weekday"},
	{Name: "history", Args: "[days]", Help: "hourly usage heat per day"},
	{Name: "schedule", Args: "[start] [end]", Help: "window triggers for a workday"},
	{Name: "recommend", Args: "[days]", Help: "best first trigger time"},
	{Name: "export", Args: "<path>", Help: "write the plan into a markdown note"},
	{Name: "sync:push", Help: "publish this machine's hours"},
	{Name: "sync:pull", Help: "import other machines' hours"},
	{Name: "collector:run", Args: "[name]", Help: "drain enabled collectors"},
}

const maxPaletteRows = 5

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	commandStyle = lipgloss.NewStyle().Foreground(theme.Peach)
	hintStyle    = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// MatchCommands returns the commands whose name starts with the first word
// of input. Once a full name is typed only that command is returned.
func MatchCommands(input string) []PaletteCommand {
	word, _, _ := strings.Cut(strings.TrimSpace(strings.ToLower(input)), " ")
	var out []PaletteCommand
	for _, c := range PaletteCommands {
		if c.Name == word {
			return []PaletteCommand{c}
		}
		if strings.HasPrefix(c.Name, word) {
			out = append(out, c)
		}
	}
	return out
}

// CompleteCommand expands an unambiguous command prefix ("rec 7" becomes
// "recommend 7"). Anything else is returned trimmed but unchanged.
func CompleteCommand(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return input
	}
	matches := MatchCommands(input)
	if len(matches) != 1 {
		return input
	}
	_, rest, hasRest := strings.Cut(input, " ")
	if !hasRest {
		return matches[0].Name
	}
	return matches[0].Name + " " + strings.TrimSpace(rest)
}

type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "week, schedule 08:30 18:00, sync:push…"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows the palette with an empty line and focuses it.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "tab":
			completed := CompleteCommand(p.input.Value())
			if completed != strings.TrimSpace(p.input.Value()) && !strings.Contains(completed, " ") {
				completed += " "
			}
			p.input.SetValue(completed)
			p.input.CursorEnd()
			return p, nil
		case "enter":
			val := CompleteCommand(p.input.Value())
			p.visible = false
			p.input.Blur()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	matching := MatchCommands(p.input.Value())
	if len(matching) > maxPaletteRows {
		matching = matching[:maxPaletteRows]
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if len(matching) > 0 {
		sb.WriteString("\n")
		for _, c := range matching {
			usage := c.Name
			if c.Args != "" {
				usage += " " + c.Args
			}
			sb.WriteString("  " + commandStyle.Render(usage) + "  " + hintStyle.Render(c.Help) + "\n")
		}
	} else {
		sb.WriteString("\n" + hintStyle.Render("  no matching command") + "\n")
	}
	sb.WriteString(hintStyle.Render("tab completes · enter runs · esc closes"))

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
