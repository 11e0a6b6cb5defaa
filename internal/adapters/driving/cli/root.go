// Package cli provides the command-line interface for docbot.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docbot/internal/logger"
)

// version is set by SetVersion from build information.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "docbot",
	Short: "Ask questions about technical documentation",
	Long: `docbot answers questions about a corpus of technical documents.

It identifies which document a question is about, asks for clarification
when that is ambiguous, retrieves the most similar passages from the chunk
index and has a language model answer from them.

Configuration lives in ~/.docbot/config.toml and can be overridden with
DOCBOT_* environment variables (e.g. DOCBOT_LLM_MODEL) or a .env file.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file or directory (default ~/.docbot/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline progress to stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}
