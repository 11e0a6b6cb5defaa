package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docbot/internal/core/domain"
	"github.com/custodia-labs/docbot/internal/postprocessors"
)

var (
	ingestReplace   bool
	ingestBatchSize int
	ingestSplitter  string
	ingestChunkSize int
	ingestOverlap   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files or directories...]",
	Short: "Add markdown documents to the index",
	Long: `Split markdown files into chunks, embed them and store them in the index.

Files named CODE_YEAR_STANDARD.md (for example PCGH_2021_Pliego_General.md)
are indexed with structured document metadata; other markdown files are
indexed by file name only. Directories are walked recursively.

Tables are kept whole as single chunks. Text is split on paragraph, line
and word boundaries.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestReplace, "replace", false, "clear the index before adding chunks")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 50, "chunks embedded per request")
	ingestCmd.Flags().StringVar(&ingestSplitter, "splitter", postprocessors.DefaultSplitter, "chunking strategy")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "maximum chunk size in characters (0 = splitter default)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", -1, "characters shared by consecutive chunks (-1 = splitter default)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := map[string]any{}
	if ingestChunkSize > 0 {
		cfg["chunk_size"] = ingestChunkSize
	}
	if ingestOverlap >= 0 {
		cfg["overlap"] = ingestOverlap
	}

	splitter, err := postprocessors.DefaultRegistry().Build(ingestSplitter, cfg)
	if err != nil {
		return err
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	svc, err := a.Ingest(cmd.Context(), splitter)
	if err != nil {
		return err
	}

	report, err := svc.Ingest(cmd.Context(), args, domain.IngestOptions{
		Replace:   ingestReplace,
		BatchSize: ingestBatchSize,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	outputIngestReport(cmd, report)
	return nil
}

func outputIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	if report == nil {
		report = &domain.IngestReport{}
	}
	if report.Files == 0 {
		cmd.Println("No markdown files found.")
	} else {
		cmd.Printf("Ingested %d files: %d chunks (%d tables)\n", report.Files, report.Chunks, report.Tables)
		for _, doc := range report.Documents {
			cmd.Printf("  %s\n", doc)
		}
	}
	for _, path := range report.Skipped {
		cmd.Printf("Skipped %s (not markdown)\n", path)
	}
}
