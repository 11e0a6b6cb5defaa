package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docbot/internal/core/domain"
)

var catalogFormat string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the documents in the index",
	Long: `List the documents discovered in the chunk index, in catalog order.

Formats:
  text - one document per line with its description
  json - array of documents
  yaml - sequence of documents`,
	Args: cobra.NoArgs,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFormat, "format", "f", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(catalogCmd)
}

// catalogEntry is the exported shape of one document.
type catalogEntry struct {
	Key         string `json:"key" yaml:"key"`
	Code        string `json:"code,omitempty" yaml:"code,omitempty"`
	Year        string `json:"year,omitempty" yaml:"year,omitempty"`
	Standard    string `json:"standard,omitempty" yaml:"standard,omitempty"`
	Description string `json:"description" yaml:"description"`
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	switch catalogFormat {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: unknown format %q", domain.ErrInvalidInput, catalogFormat)
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	assistant, err := a.Assistant(cmd.Context())
	if err != nil {
		return err
	}

	docs, err := assistant.Documents(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	entries := make([]catalogEntry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, catalogEntry{
			Key:         d.Key,
			Code:        d.Code,
			Year:        d.Year,
			Standard:    d.Standard,
			Description: d.Description(),
		})
	}

	switch catalogFormat {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal catalog: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to marshal catalog: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
	default:
		outputCatalogText(cmd, entries)
	}
	return nil
}

func outputCatalogText(cmd *cobra.Command, entries []catalogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), domain.NoDocumentsAvailable)
		return
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %s\n", e.Key, e.Description)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d documents\n", len(entries))
}
