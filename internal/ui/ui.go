package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Choice is a menu selection.
type Choice int

const (
	ChoiceNone Choice = iota
	ChoiceCPU
	ChoiceMemory
	ChoiceProcesses
	ChoiceContinuous
	ChoiceExit
)

func (c Choice) String() string {
	for _, it := range menuItems {
		if it.choice == c {
			return it.label
		}
	}
	return "None"
}

type menuItem struct {
	choice Choice
	label  string
}

var menuItems = []menuItem{
	{ChoiceCPU, "CPU Usage"},
	{ChoiceMemory, "Memory Usage"},
	{ChoiceProcesses, "Process Summary"},
	{ChoiceContinuous, "Continuous Monitoring"},
	{ChoiceExit, "Exit"},
}

// KeyMap holds the menu key bindings.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Digit  key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the standard menu bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Digit:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "choose")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "exit")),
	}
}

// Menu is the main menu model.
type Menu struct {
	keys   KeyMap
	cursor int
	choice Choice
}

func NewMenu() *Menu { return &Menu{keys: DefaultKeyMap()} }

// Choice returns the selection, ChoiceNone until one is made.
func (m *Menu) Choice() Choice { return m.choice }

func (m *Menu) Init() tea.Cmd { return nil }

func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Quit):
		m.choice = ChoiceExit
		return m, tea.Quit
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, m.keys.Down):
		if m.cursor < len(menuItems)-1 {
			m.cursor++
		}
	case key.Matches(km, m.keys.Select):
		m.choice = menuItems[m.cursor].choice
		return m, tea.Quit
	case key.Matches(km, m.keys.Digit):
		idx := int(km.String()[0] - '1')
		m.cursor = idx
		m.choice = menuItems[idx].choice
		return m, tea.Quit
	}
	return m, nil
}

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
)

func (m *Menu) View() string {
	if m.choice != ChoiceNone {
		return ""
	}
	var b strings.Builder
	for i, it := range menuItems {
		line := fmt.Sprintf("%d. %s", i+1, it.label)
		if i == m.cursor {
			line = labelStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	body := strings.TrimRight(b.String(), "\n")
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("=== SysMonitor++ Main Menu ==="),
		cardStyle.Render(body),
		subtleStyle.Render("Enter your choice (1-5, ↑/↓ + enter, q to exit)"),
	) + "\n"
}

// RunMenu shows the menu once and returns the selection. A canceled ctx
// ends the menu with ChoiceExit.
func RunMenu(ctx context.Context, in io.Reader, out io.Writer) (Choice, error) {
	prog := tea.NewProgram(NewMenu(), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ChoiceExit, ctx.Err()
		}
		return ChoiceExit, err
	}
	m, ok := final.(*Menu)
	if !ok || m.Choice() == ChoiceNone {
		return ChoiceExit, nil
	}
	return m.Choice(), nil
}

// GaugeBar renders pct as a fixed-width bar followed by the value.
func GaugeBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s%s] %5.1f%%",
		strings.Repeat(gaugeFill, filled),
		strings.Repeat(gaugeEmpty, width-filled),
		pct)
}

// Header renders a section title such as "=== CPU Usage ===".
func Header(title string) string {
	return titleStyle.Render("=== " + title + " ===")
}

// BytesToGiB converts a byte count for display.
func BytesToGiB(b uint64) float64 { return float64(b) / (1024 * 1024 * 1024) }
