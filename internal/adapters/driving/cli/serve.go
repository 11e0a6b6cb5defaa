package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/custodia-labs/docbot/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docbot/internal/adapters/driving/mcp"
	"github.com/custodia-labs/docbot/internal/core/ports/driving"
	"github.com/custodia-labs/docbot/internal/logger"
)

var (
	serveAddr     string
	serveJSONLogs bool
	serveNoMCP    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long: `Start the HTTP server answering questions about the indexed documents.

Routes:
  POST /chat          - answer one message
  POST /chat/stream   - answer as server-sent events, one line per event
  GET  /suggestions   - list known documents
  GET  /healthz       - readiness
  GET  /metrics       - Prometheus metrics
  /mcp                - MCP over streamable HTTP (disable with --no-mcp)

The server starts even when providers are misconfigured: each request
retries initialization and reports the configuration error until fixed.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&serveJSONLogs, "json-logs", false, "write logs as JSON")
	serveCmd.Flags().BoolVar(&serveNoMCP, "no-mcp", false, "do not mount the MCP endpoint")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if serveJSONLogs {
		logger.Init(logger.Options{Verbose: verbose, JSON: true, Output: cmd.ErrOrStderr()})
	}

	a, err := loadApp()
	if err != nil {
		return err
	}

	settings, err := a.Settings().Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	ctx := cmd.Context()
	assistant, err := a.Assistant(ctx)
	if err != nil {
		return err
	}

	preInitialize(ctx, assistant)

	if prompts := a.Prompts(); prompts != nil {
		go func() {
			if err := prompts.Watch(ctx); err != nil {
				logger.Warn("Prompt hot reload disabled: %v", err)
			}
		}()
	}

	cfg := httpapi.Config{
		Addr:         settings.Server.Addr,
		StreamDelay:  settings.Server.StreamDelay,
		AllowOrigins: settings.Server.AllowOrigins,
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	var opts []httpapi.Option
	if m := a.Metrics(); m != nil {
		opts = append(opts, httpapi.WithMetricsHandler(m.Handler()))
	}
	if !serveNoMCP {
		mcpServer, err := mcp.NewServer(&mcp.Ports{Assistant: assistant})
		if err != nil {
			return err
		}
		opts = append(opts, httpapi.WithMCPHandler(mcpServer.Handler()))
	}

	server := httpapi.NewServer(assistant, cfg, opts...)
	logger.L().Info("listening",
		zap.String("addr", server.Addr()),
		zap.String("model", settings.LLM.Model),
		zap.String("index", string(settings.Index.Backend)),
	)
	cmd.Printf("docbot listening on %s\n", server.Addr())

	return server.Run(ctx)
}

// preInitialize discovers the catalog before the first request. Failure
// is only logged: requests retry initialization lazily.
func preInitialize(ctx context.Context, assistant driving.AssistantService) {
	if err := assistant.Initialize(ctx); err != nil {
		logger.Warn("Pre-initialization failed, will retry on first request: %v", err)
		return
	}
	status := assistant.Status(ctx)
	logger.Info("Pipeline ready: %d documents, model %s", status.Documents, status.Model)
}
