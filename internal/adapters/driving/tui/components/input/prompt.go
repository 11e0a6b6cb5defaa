// Package input provides the prompt input for the chat TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docbot/internal/adapters/driving/tui/styles"
)

// charLimit bounds a single question.
const charLimit = 2000

// Prompt wraps a bubbles textinput for entering questions.
type Prompt struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int
}

// NewPrompt creates a focused prompt.
func NewPrompt(s *styles.Styles) *Prompt {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about the documentation..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = charLimit
	ti.Width = 60

	return &Prompt{
		textinput: ti,
		styles:    s,
		width:     60,
	}
}

// Init starts the cursor blink.
func (p *Prompt) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (p *Prompt) Update(msg tea.Msg) (*Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.textinput, cmd = p.textinput.Update(msg)
	return p, cmd
}

// View renders the prompt.
func (p *Prompt) View() string {
	return p.styles.InputField.Width(p.width - 2).Render(p.textinput.View())
}

// Value returns the current input value.
func (p *Prompt) Value() string {
	return p.textinput.Value()
}

// SetValue sets the input value.
func (p *Prompt) SetValue(value string) {
	p.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (p *Prompt) Focus() tea.Cmd {
	return p.textinput.Focus()
}

// Blur removes focus from the input.
func (p *Prompt) Blur() {
	p.textinput.Blur()
}

// Focused returns whether the input is focused.
func (p *Prompt) Focused() bool {
	return p.textinput.Focused()
}

// SetWidth sets the outer width of the prompt.
func (p *Prompt) SetWidth(width int) {
	p.width = width
	// border, padding and prompt marker
	inner := width - 8
	if inner < 20 {
		inner = 20
	}
	p.textinput.Width = inner
}

// Width returns the current width.
func (p *Prompt) Width() int {
	return p.width
}

// Reset clears the input.
func (p *Prompt) Reset() {
	p.textinput.Reset()
}
