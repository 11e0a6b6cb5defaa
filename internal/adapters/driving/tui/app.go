package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docbot/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docbot/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docbot/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/docbot/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docbot/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docbot/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docbot/internal/core/domain"
)

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	prompt     *input.Prompt
	transcript *transcript.View
	statusBar  *status.Bar

	// history is the caller-held transcript sent with every question.
	history []domain.Message

	// pending is true while a question is being answered.
	pending bool

	documents    []domain.DocumentDescriptor
	documentsErr error
	currentView  messages.ViewType

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	bar := status.NewBar(s, km)
	bar.SetModel(ports.Model)

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		prompt:      input.NewPrompt(s),
		transcript:  transcript.New(s),
		statusBar:   bar,
		currentView: messages.ViewChat,
	}, nil
}

// WithContext sets the context used for assistant calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("docbot"),
		a.prompt.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ReplyReceived:
		a.handleReply(msg)
		return a, nil

	case messages.DocumentsLoaded:
		a.documents = msg.Documents
		a.documentsErr = msg.Err
		return a, nil

	case messages.ViewChanged:
		return a, a.switchView(msg.View)
	}

	var cmd tea.Cmd
	a.prompt, cmd = a.prompt.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(k, a.keymap.Documents):
		if a.currentView == messages.ViewDocuments {
			return a, a.switchView(messages.ViewChat)
		}
		return a, a.switchView(messages.ViewDocuments)

	case keymap.Matches(k, a.keymap.Back):
		if a.currentView == messages.ViewDocuments {
			return a, a.switchView(messages.ViewChat)
		}
		return a, nil

	case keymap.Matches(k, a.keymap.ScrollUp), keymap.Matches(k, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd
	}

	if a.currentView != messages.ViewChat {
		return a, nil
	}

	switch {
	case keymap.Matches(k, a.keymap.Clear):
		if a.pending {
			return a, nil
		}
		a.history = nil
		a.transcript.Clear()
		a.statusBar.SetState(status.StateReady)
		a.statusBar.SetMessage("")
		return a, nil

	case keymap.Matches(k, a.keymap.Send):
		return a, a.send()
	}

	var cmd tea.Cmd
	a.prompt, cmd = a.prompt.Update(msg)
	return a, cmd
}

// send submits the prompt. The history snapshot excludes the new question.
func (a *App) send() tea.Cmd {
	question := strings.TrimSpace(a.prompt.Value())
	if question == "" || a.pending {
		return nil
	}

	a.pending = true
	a.prompt.Reset()
	a.transcript.Append(transcript.Entry{Role: domain.RoleUser, Content: question})
	a.statusBar.SetState(status.StateThinking)

	history := make([]domain.Message, len(a.history))
	copy(history, a.history)

	return askCmd(a.ctx, a.ports, question, history)
}

func (a *App) handleReply(msg messages.ReplyReceived) {
	a.pending = false
	a.history = append(a.history,
		domain.Message{Role: domain.RoleUser, Content: msg.Question},
		domain.Message{Role: domain.RoleAssistant, Content: msg.Reply.Text},
	)
	a.transcript.Append(transcript.Entry{
		Role:    domain.RoleAssistant,
		Content: msg.Reply.Text,
		Outcome: msg.Reply.Outcome,
	})

	if msg.Reply.Outcome == domain.OutcomeError {
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage("request failed")
		return
	}
	a.statusBar.SetState(status.StateReady)
	a.statusBar.SetMessage(msg.Reply.Document)
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	a.currentView = view
	if view == messages.ViewDocuments {
		a.statusBar.SetState(status.StatePanel)
		if a.documents == nil {
			return loadDocumentsCmd(a.ctx, a.ports)
		}
		return nil
	}

	if a.pending {
		a.statusBar.SetState(status.StateThinking)
	} else {
		a.statusBar.SetState(status.StateReady)
	}
	return nil
}

func askCmd(ctx context.Context, ports *Ports, question string, history []domain.Message) tea.Cmd {
	return func() tea.Msg {
		reply := ports.Assistant.Ask(ctx, question, history)
		return messages.ReplyReceived{Question: question, Reply: reply}
	}
}

func loadDocumentsCmd(ctx context.Context, ports *Ports) tea.Cmd {
	return func() tea.Msg {
		docs, err := ports.Assistant.Documents(ctx)
		if docs == nil && err == nil {
			docs = []domain.DocumentDescriptor{}
		}
		return messages.DocumentsLoaded{Documents: docs, Err: err}
	}
}

// SetDimensions lays out the components for the terminal size.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	// title, prompt (3 lines with border) and status bar
	body := height - 5
	if body < 3 {
		body = 3
	}
	a.transcript.SetSize(width, body)
	a.prompt.SetWidth(width)
	a.statusBar.SetWidth(width)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	title := a.styles.Title.Render("docbot")
	var body string
	if a.currentView == messages.ViewDocuments {
		body = a.documentsView()
	} else {
		body = a.transcript.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		a.prompt.View(),
		a.statusBar.View(),
	)
}

func (a *App) documentsView() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Available documents"))
	b.WriteString("\n\n")

	switch {
	case a.documentsErr != nil:
		b.WriteString(a.styles.Error.Render(a.documentsErr.Error()))
	case a.documents == nil:
		b.WriteString(a.styles.Muted.Render("Loading..."))
	case len(a.documents) == 0:
		b.WriteString(a.styles.Muted.Render(domain.NoDocumentsAvailable))
	default:
		for _, d := range a.documents {
			fmt.Fprintf(&b, "%s  %s\n", a.styles.DocumentKey.Render(d.Key), a.styles.Normal.Render(d.Description()))
		}
	}

	return a.styles.Panel.Width(a.width - 2).Render(strings.TrimRight(b.String(), "\n"))
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// History returns the transcript sent with the next question.
func (a *App) History() []domain.Message {
	return a.history
}

// Pending reports whether a question is being answered.
func (a *App) Pending() bool {
	return a.pending
}

// Documents returns the loaded catalog, or nil before the panel was opened.
func (a *App) Documents() []domain.DocumentDescriptor {
	return a.documents
}
