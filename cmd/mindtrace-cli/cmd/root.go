package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/futig/mindtrace-ai/internal/builder"
	"github.com/futig/mindtrace-ai/internal/config"
	"github.com/futig/mindtrace-ai/internal/integration/mindtrace"
	"github.com/futig/mindtrace-ai/internal/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	outputText = "text"
	outputJSON = "json"
)

var (
	// envName selects the .env.<env> file
	envName string
	// outputFormat is the output format (text, json)
	outputFormat string
	// serverURL sends the commands to a running service instead
	serverURL string

	// svc is built before every subcommand runs
	svc     service
	cleanup func()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mindtrace",
	Short: "CLI for the MindTrace AI service",
	Long: `mindtrace runs the MindTrace pipeline from the command line, with the same
configuration as the HTTP service.

Examples:
  # Index a document for a project
  mindtrace ingest ./specs/plan.pdf --project acme

  # Search and ask the indexed documents
  mindtrace search "delivery date" --project acme
  mindtrace ask "When is the release due?" --project acme

  # Compare two versions of a ticket description
  mindtrace analyze --old-file v1.txt --new-file v2.txt --format markdown

  # Run against a deployed service (paths given to ingest are resolved there)
  mindtrace --server http://mindtrace:8000 ask "When is the release due?" --project acme`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if outputFormat != outputText && outputFormat != outputJSON {
			return fmt.Errorf("unsupported output format %q (text, json)", outputFormat)
		}

		clientCfg, err := config.LoadClientConfig(envName)
		if err != nil {
			return err
		}
		if serverURL != "" {
			clientCfg.URL = serverURL
		}
		if clientCfg.URL != "" {
			return connectRemote(clientCfg)
		}

		components, err := builder.BuildComponents(cmd.Context(), envName)
		if err != nil {
			return err
		}
		svc = localService{components: components}
		cleanup = func() {
			components.Close()
			_ = components.Logger.Sync()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cleanup != nil {
			cleanup()
		}
		svc, cleanup = nil, nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "local", "Environment name, selects the .env.<env> file")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputText, "Output format: text, json")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Base URL of a running service (default $MINDTRACE_URL)")
}

func connectRemote(cfg *config.ClientConfig) error {
	log, err := logger.New(cfg.LogLevel, envName)
	if err != nil {
		return err
	}
	log.Debug("using remote service", zap.String("url", cfg.URL))

	svc = mindtrace.NewClient(*cfg, log)
	cleanup = func() { _ = log.Sync() }
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
