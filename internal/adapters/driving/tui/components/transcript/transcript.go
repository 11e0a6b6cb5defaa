// Package transcript renders the conversation in a scrollable viewport.
// Assistant turns are markdown and are rendered with glamour.
package transcript

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/custodia-labs/docbot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docbot/internal/core/domain"
)

// Entry is one rendered turn.
type Entry struct {
	Role    domain.Role
	Content string
	Outcome domain.Outcome
}

// View is the transcript component.
type View struct {
	styles   *styles.Styles
	viewport viewport.Model
	renderer *glamour.TermRenderer
	entries  []Entry
	width    int
}

// New creates an empty transcript.
func New(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	v := &View{
		styles:   s,
		viewport: viewport.New(80, 20),
		width:    80,
	}
	v.renderer = newRenderer(v.width)
	return v
}

func newRenderer(width int) *glamour.TermRenderer {
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

// SetSize resizes the viewport and re-renders all entries.
func (v *View) SetSize(width, height int) {
	if width != v.width {
		v.width = width
		v.renderer = newRenderer(width)
	}
	v.viewport.Width = width
	v.viewport.Height = height
	v.refresh()
}

// Append adds a turn and scrolls to the bottom.
func (v *View) Append(e Entry) {
	v.entries = append(v.entries, e)
	v.refresh()
}

// Clear removes every turn.
func (v *View) Clear() {
	v.entries = nil
	v.refresh()
}

// Entries returns the turns in order.
func (v *View) Entries() []Entry {
	return v.entries
}

// Update forwards scrolling messages to the viewport.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// View renders the visible part of the transcript.
func (v *View) View() string {
	return v.viewport.View()
}

func (v *View) refresh() {
	if len(v.entries) == 0 {
		v.viewport.SetContent(v.styles.Muted.Render(
			"Ask a question about the indexed documents. Follow-ups keep the conversation context."))
		return
	}

	parts := make([]string, len(v.entries))
	for i, e := range v.entries {
		parts[i] = v.render(e)
	}
	v.viewport.SetContent(strings.Join(parts, "\n\n"))
	v.viewport.GotoBottom()
}

func (v *View) render(e Entry) string {
	if e.Role == domain.RoleUser {
		return v.styles.UserLabel.Render("You") + "\n" + v.styles.Normal.Render(e.Content)
	}

	label := v.styles.AssistantLabel.Render("docbot")
	switch e.Outcome {
	case domain.OutcomeError:
		return label + "\n" + v.styles.Error.Render(e.Content)
	case domain.OutcomeClarifying:
		label += " " + v.styles.Clarification.Render("(needs clarification)")
	}
	return label + "\n" + v.markdown(e.Content)
}

func (v *View) markdown(text string) string {
	if v.renderer == nil {
		return text
	}
	out, err := v.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
