package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Ask one question without conversation history.

When the question could refer to several documents the reply is a
clarifying question; use "docbot chat" to answer it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the reply as JSON")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON shape of a reply.
type askOutput struct {
	Response   string `json:"response"`
	Outcome    string `json:"outcome"`
	Language   string `json:"language,omitempty"`
	Document   string `json:"document,omitempty"`
	Confidence string `json:"confidence,omitempty"`
	Chunks     int    `json:"chunks"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	a, err := loadApp()
	if err != nil {
		return err
	}
	assistant, err := a.Assistant(cmd.Context())
	if err != nil {
		return err
	}

	reply := assistant.Ask(cmd.Context(), question, nil)

	if askJSON {
		return outputReplyJSON(cmd, reply)
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return nil
}

func outputReplyJSON(cmd *cobra.Command, reply domain.Reply) error {
	out := askOutput{
		Response:   reply.Text,
		Outcome:    string(reply.Outcome),
		Language:   string(reply.Language),
		Document:   reply.Document,
		Confidence: string(reply.Confidence),
		Chunks:     reply.Chunks,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
