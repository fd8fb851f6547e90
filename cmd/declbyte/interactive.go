package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/declbyte/declbyte/compiler"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	structStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	padStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectStruct modelState = iota
	stateShowLayout
)

type inspectorModel struct {
	err      error
	filename string
	opts     compiler.Options
	consts   []compiler.Constant
	structs  []compiler.StructInfo
	filter   textinput.Model
	selected int
	state    modelState
}

type loadedMsg struct {
	err     error
	consts  []compiler.Constant
	structs []compiler.StructInfo
}

func runInteractive(filename string, opts compiler.Options) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive mode requires a terminal")
	}

	filter := textinput.New()
	filter.Placeholder = "filter structs"
	filter.Prompt = "/"

	m := &inspectorModel{
		filename: filename,
		opts:     opts,
		filter:   filter,
	}
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m *inspectorModel) Init() tea.Cmd {
	return m.load
}

func (m *inspectorModel) load() tea.Msg {
	source, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	consts, structs, err := compiler.Describe(string(source), m.opts)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{consts: consts, structs: structs}
}

func (m *inspectorModel) visible() []compiler.StructInfo {
	q := strings.ToLower(m.filter.Value())
	if q == "" {
		return m.structs
	}
	var out []compiler.StructInfo
	for _, s := range m.structs {
		if strings.Contains(strings.ToLower(s.Name), q) {
			out = append(out, s)
		}
	}
	return out
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.err = msg.err
		m.consts = msg.consts
		m.structs = msg.structs
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if !m.filter.Focused() {
				return m, tea.Quit
			}

		case "/":
			if m.state == stateSelectStruct && !m.filter.Focused() {
				m.filter.Focus()
				return m, textinput.Blink
			}

		case "esc":
			switch {
			case m.filter.Focused():
				m.filter.Blur()
			case m.state == stateShowLayout:
				m.state = stateSelectStruct
			default:
				return m, tea.Quit
			}
			return m, nil

		case "up", "k":
			if m.state == stateSelectStruct && !m.filter.Focused() && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectStruct && !m.filter.Focused() && m.selected < len(m.visible())-1 {
				m.selected++
			}

		case "enter":
			switch {
			case m.filter.Focused():
				m.filter.Blur()
				m.selected = 0
			case m.state == stateSelectStruct && len(m.visible()) > 0:
				m.state = stateShowLayout
			}
			return m, nil
		}
	}

	if m.filter.Focused() {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if m.selected >= len(m.visible()) {
			m.selected = 0
		}
		return m, cmd
	}
	return m, nil
}

func (m *inspectorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("declbyte " + m.filename))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q: quit"))
		return b.String()
	}

	if m.structs == nil {
		b.WriteString("compiling...\n")
		return b.String()
	}

	if m.state == stateShowLayout {
		m.viewLayout(&b)
		return b.String()
	}

	fmt.Fprintf(&b, "%d constants, %d structs\n\n", len(m.consts), len(m.structs))
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	for i, s := range m.visible() {
		line := fmt.Sprintf("%s  %d bytes, align %d", s.Name, s.Size, s.Align)
		if s.Packed {
			line += ", packed"
		}
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString(structStyle.Render("  " + line))
		}
		b.WriteByte('\n')
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: select • enter: layout • /: filter • q: quit"))
	return b.String()
}

func (m *inspectorModel) viewLayout(b *strings.Builder) {
	visible := m.visible()
	if m.selected >= len(visible) {
		m.state = stateSelectStruct
		return
	}
	s := visible[m.selected]

	fmt.Fprintf(b, "%s — %d bytes, %d-byte aligned\n\n", s.Name, s.Size, s.Align)
	fmt.Fprintf(b, "  %-8s %-6s %-24s %s\n", "offset", "size", "field", "type")

	for _, f := range s.Fields {
		line := fmt.Sprintf("  0x%04x   %-6d %-24s %s", f.Offset, f.Size, f.Name, f.Type)
		if f.BitWidth > 0 {
			line += fmt.Sprintf(" :%d @bit %d", f.BitWidth, f.BitOffset)
		}
		if f.Kind == "padding" {
			b.WriteString(padStyle.Render(line))
		} else {
			b.WriteString(typeStyle.Render(line))
		}
		b.WriteByte('\n')
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("esc: back • q: quit"))
}
