// Package status provides the status bar for the chat TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docbot/internal/adapters/driving/tui/styles"
)

// State represents the conversation state for display.
type State string

// Status bar states.
const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
	StatePanel    State = "panel"
)

// Bar displays conversation status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	model   string
	width   int
}

// NewBar creates a new status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateThinking:
		return b.styles.Muted.Render("Thinking...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render(b.message)
		}
		return b.styles.Error.Render("Error")
	case StatePanel:
		return b.styles.Normal.Render("Documents")
	case StateReady:
	}

	parts := []string{"Ready"}
	if b.model != "" {
		parts = append(parts, b.model)
	}
	if b.message != "" {
		parts = append(parts, b.message)
	}
	return b.styles.Muted.Render(strings.Join(parts, " · "))
}

func (b *Bar) renderRight() string {
	var bindings []key.Binding
	if b.state == StatePanel {
		bindings = b.keymap.PanelHelp()
	} else {
		bindings = b.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the detail shown next to the state.
func (b *Bar) SetMessage(msg string) {
	b.message = msg
}

// Message returns the current detail message.
func (b *Bar) Message() string {
	return b.message
}

// SetModel sets the model reference shown when ready.
func (b *Bar) SetModel(model string) {
	b.model = model
}

// SetWidth sets the bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}
