package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docbot/internal/adapters/driving/tui"
	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/core/ports/driving"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Start a conversation about the indexed documents.

On a terminal this opens the full-screen chat:
  Enter         - Send
  Ctrl+D        - Toggle document list
  Ctrl+L        - Clear conversation
  PgUp/PgDown   - Scroll
  Ctrl+C        - Quit

With --plain, or when input is not a terminal, questions are read one per
line and answers printed as they arrive. An empty line ends the session.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "read questions line by line instead of the full-screen UI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	assistant, err := a.Assistant(cmd.Context())
	if err != nil {
		return err
	}

	if chatPlain || !isTerminal(cmd.InOrStdin()) {
		return runLineChat(cmd, assistant)
	}

	model := ""
	if settings, err := a.Settings().Get(); err == nil {
		model = settings.LLM.Model
	}

	app, err := tui.NewApp(&tui.Ports{Assistant: assistant, Model: model})
	if err != nil {
		return fmt.Errorf("failed to create chat UI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}

// runLineChat keeps the transcript locally and replays it with every
// question, the same way the full-screen chat does.
func runLineChat(cmd *cobra.Command, assistant driving.AssistantService) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	var history []domain.Message

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			return nil
		}

		reply := assistant.Ask(ctx, question, history)
		fmt.Fprintf(out, "%s\n\n", reply.Text)

		history = append(history,
			domain.Message{Role: domain.RoleUser, Content: question},
			domain.Message{Role: domain.RoleAssistant, Content: reply.Text},
		)

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
