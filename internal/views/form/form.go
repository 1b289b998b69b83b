// Package form is a focusable stack of labelled text inputs shared by the
// create forms and the login page.
package form

import (
	"strings"

	"github.com/biz-dashboard/tui/internal/theme"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Field describes one input.
type Field struct {
	Label       string
	Placeholder string
	Password    bool
	CharLimit   int
}

// Fields holds the inputs and which one has focus.
type Fields struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

// New builds the inputs for fields. Nothing is focused until Focus is called.
func New(fields ...Field) Fields {
	f := Fields{
		labels: make([]string, len(fields)),
		inputs: make([]textinput.Model, len(fields)),
	}
	for i, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.Placeholder
		in.Prompt = ""
		in.CharLimit = fd.CharLimit
		if in.CharLimit == 0 {
			in.CharLimit = 64
		}
		if fd.Password {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.labels[i] = fd.Label
		f.inputs[i] = in
	}
	return f
}

// Len is the number of inputs.
func (f Fields) Len() int { return len(f.inputs) }

// Focused returns the index of the focused input.
func (f Fields) Focused() int { return f.focus }

// Focus moves focus to input i.
func (f *Fields) Focus(i int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	if i < 0 {
		i = len(f.inputs) - 1
	}
	i %= len(f.inputs)
	f.inputs[f.focus].Blur()
	f.focus = i
	return f.inputs[i].Focus()
}

// Next focuses the following input, wrapping.
func (f *Fields) Next() tea.Cmd { return f.Focus(f.focus + 1) }

// Prev focuses the preceding input, wrapping.
func (f *Fields) Prev() tea.Cmd { return f.Focus(f.focus - 1) }

// Blur removes focus from every input.
func (f *Fields) Blur() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// Value returns the text of input i.
func (f Fields) Value(i int) string {
	if i < 0 || i >= len(f.inputs) {
		return ""
	}
	return f.inputs[i].Value()
}

// SetValue replaces the text of input i.
func (f *Fields) SetValue(i int, v string) {
	if i < 0 || i >= len(f.inputs) {
		return
	}
	f.inputs[i].SetValue(v)
}

// Reset empties every input and returns focus to the first.
func (f *Fields) Reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	if f.focus != 0 && len(f.inputs) > 0 {
		f.inputs[f.focus].Blur()
		f.focus = 0
	}
}

// Update forwards msg to the focused input.
func (f *Fields) Update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

var (
	styleFocusedLabel = lipgloss.NewStyle().Foreground(theme.ColorAccent).Bold(true).Width(14)
	styleCursor       = lipgloss.NewStyle().Foreground(theme.ColorAccent)
)

// View renders one "label  input" row per field.
func (f Fields) View() string {
	var b strings.Builder
	for i, in := range f.inputs {
		label := theme.StyleLabel.Render(f.labels[i])
		marker := "  "
		if i == f.focus && in.Focused() {
			label = styleFocusedLabel.Render(f.labels[i])
			marker = styleCursor.Render("▸ ")
		}
		b.WriteString(marker + label + in.View())
		if i < len(f.inputs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
