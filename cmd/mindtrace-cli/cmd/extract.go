package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var extractChunks bool

var extractCmd = &cobra.Command{
	Use:   "extract <path-or-url>",
	Short: "Extract a document to Markdown",
	Long: `Extract a local file or a remote URL and print its Markdown rendering.
With --chunks the document is also split into chunks.

Examples:
  mindtrace extract ./specs/plan.pdf
  mindtrace extract https://example.com/guide.html --chunks -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractChunks, "chunks", false, "Also split the document into chunks")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if extractChunks {
		doc, err := svc.ExtractAndChunk(ctx, args[0])
		if err != nil {
			return err
		}
		if outputFormat == outputJSON {
			return printJSON(out, doc)
		}
		for i, chunk := range doc.Chunks {
			fmt.Fprintf(out, "--- chunk %d: %s ---\n%s\n", i+1, strings.Join(chunk.Meta.Headings, " › "), chunk.Text)
		}
		return nil
	}

	doc, err := svc.ExtractDocument(ctx, args[0])
	if err != nil {
		return err
	}
	if outputFormat == outputJSON {
		return printJSON(out, doc)
	}
	fmt.Fprintln(out, doc.Markdown)
	return nil
}
