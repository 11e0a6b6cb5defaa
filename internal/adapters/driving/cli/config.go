package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change settings",
	Long: `View and change docbot settings.

Settings are stored in ~/.docbot/config.toml (see --config). Environment
variables override the file: llm.model is read from DOCBOT_LLM_MODEL, and
the names GROQ_API_KEY, LLM_MODEL, LLM_FALLBACK_MODEL, TOP_K_RESULTS,
SIMILARITY_THRESHOLD and CHROMA_HOST are also accepted.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its source",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store one setting",
	Long: `Store one setting in the config file.

API keys may be omitted from the command line; they are then read from
the terminal without echo.

Examples:
  docbot config set llm.fallback_model cerebras:llama3.1-8b
  docbot config set providers.groq.api_key`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and ping providers",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	settings := a.Settings()

	for _, key := range settings.Keys() {
		value, err := settings.Value(key)
		if err != nil {
			return err
		}
		source := a.Source(key)
		if value == "" && source == "default" {
			continue
		}
		if isSecretKey(key) {
			value = maskAPIKey(value)
		}
		cmd.Printf("  %-32s %-28s (%s)\n", key, value, source)
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	value, err := a.Settings().Value(args[0])
	if err != nil {
		return err
	}
	cmd.Println(value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]

	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case isSecretKey(key):
		cmd.Printf("%s: ", key)
		value = readSecret(cmd)
		cmd.Println()
	default:
		return errors.New("a value is required")
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	if err := a.Settings().Set(key, value); err != nil {
		return err
	}

	if source := a.Source(key); source != "file" && source != "default" {
		cmd.Printf("Saved %s (overridden by %s)\n", key, source)
		return nil
	}
	cmd.Printf("Saved %s\n", key)
	return nil
}

func runConfigCheck(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	settings, results, err := a.Check(cmd.Context())
	if err != nil {
		return err
	}

	failed := 0
	if err := settings.Validate(); err != nil {
		cmd.Printf("  settings: %v\n", err)
		failed++
	} else {
		cmd.Println("  settings: ok")
	}

	for _, r := range results {
		if r.Err != nil {
			cmd.Printf("  %s: %v\n", r.Name, r.Err)
			failed++
			continue
		}
		cmd.Printf("  %s: ok\n", r.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d checks failed", failed)
	}
	return nil
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, ".api_key")
}

func readSecret(cmd *cobra.Command) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(cmd.InOrStdin())
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
