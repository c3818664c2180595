package cmd

import (
	"fmt"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/spf13/cobra"
)

var ingestProject string

var ingestCmd = &cobra.Command{
	Use:   "ingest <path-or-url>...",
	Short: "Index documents for a project",
	Long: `Extract, chunk and embed each document, then store its chunks under the
project. Ingesting the same document again replaces its chunks.

Examples:
  mindtrace ingest ./specs/plan.pdf ./specs/notes.md --project acme`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestProject, "project", "p", "", "Project ID the chunks belong to")
	_ = ingestCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	responses := make([]entity.ProcessDocumentResponse, 0, len(args))
	for _, source := range args {
		points, err := svc.Ingest(ctx, source, ingestProject)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", source, err)
		}
		responses = append(responses, entity.ProcessDocumentResponse{
			ProjectID: ingestProject,
			NumChunks: len(points),
			Points:    points,
		})

		if outputFormat == outputText {
			fmt.Fprintf(out, "%s: %d chunks indexed for project %s\n", source, len(points), ingestProject)
		}
	}

	if outputFormat == outputJSON {
		return printJSON(out, responses)
	}
	return nil
}
