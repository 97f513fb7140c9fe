package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	scaleencode "github.com/wippyai/scale-encode"
	"github.com/wippyai/scale-encode/scaletype"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectType modelState = iota
	stateEditValue
)

type typeEntry struct {
	name string
	id   scaletype.ID
	sig  string
}

type interactiveModel struct {
	reg      *scaletype.Registry
	err      error
	format   string
	result   string
	types    []typeEntry
	input    textinput.Model
	selected int
	state    modelState
}

func newInteractiveModel(reg *scaletype.Registry, format string) *interactiveModel {
	m := &interactiveModel{reg: reg, format: format, state: stateSelectType}
	for _, name := range reg.Names() {
		id, _ := reg.Lookup(name)
		sig := ""
		if t, err := reg.Resolve(id); err == nil {
			sig = t.String()
		}
		m.types = append(m.types, typeEntry{name: name, id: id, sig: sig})
	}
	return m
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateSelectType {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.types)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateSelectType && len(m.types) > 0 {
				m.startEditing()
				return m, textinput.Blink
			}

		case "esc":
			if m.state == stateEditValue {
				m.state = stateSelectType
				m.result, m.err = "", nil
				return m, nil
			}
		}
	}

	if m.state != stateEditValue {
		return m, nil
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.encode()
	}
	return m, cmd
}

func (m *interactiveModel) startEditing() {
	ti := textinput.New()
	ti.Placeholder = m.format + " value"
	ti.Prompt = "value: "
	ti.Width = 60
	ti.Focus()

	m.input = ti
	m.state = stateEditValue
	m.result, m.err = "", nil
}

// encode re-encodes the current input against the selected type.
func (m *interactiveModel) encode() {
	m.result, m.err = "", nil
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return
	}

	value, err := parseDocument([]byte(text), m.format)
	if err != nil {
		m.err = err
		return
	}
	out, err := scaleencode.Encode(value, m.types[m.selected].id, m.reg)
	if err != nil {
		m.err = err
		return
	}
	m.result = fmt.Sprintf("0x%s (%d bytes)", hex.EncodeToString(out), len(out))
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("SCALE Encoder"))
	b.WriteString(fmt.Sprintf(" %d types\n\n", len(m.types)))

	if len(m.types) == 0 {
		b.WriteString("The registry has no named types.\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectType:
		b.WriteString("Select a target type:\n\n")
		for i, t := range m.types {
			line := nameStyle.Render(t.name) + " " + typeStyle.Render(t.sig)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + t.name + " " + t.sig))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit value • q quit"))

	case stateEditValue:
		t := m.types[m.selected]
		b.WriteString(fmt.Sprintf("Encoding as %s %s\n\n", nameStyle.Render(t.name), typeStyle.Render(t.sig)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		switch {
		case m.err != nil:
			b.WriteString(errorStyle.Render(m.err.Error()))
		case m.result != "":
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("type a value • esc back • ctrl+c quit"))
	}

	return b.String()
}

func runInteractive(reg *scaletype.Registry, format string) error {
	p := tea.NewProgram(newInteractiveModel(reg, format), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
