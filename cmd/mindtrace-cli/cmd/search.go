package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/spf13/cobra"
)

var (
	searchProject string
	searchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the chunks of a project",
	Long: `Embed the query and print the closest chunks of the project, best first.

Examples:
  mindtrace search "delivery date" --project acme --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchProject, "project", "p", "", "Project ID to search")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", entity.DefaultSearchLimit, "Maximum number of results")
	_ = searchCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	results, err := svc.Search(cmd.Context(), args[0], searchProject, searchLimit)
	if err != nil {
		return err
	}

	if outputFormat == outputJSON {
		return printJSON(out, entity.SearchResponse{
			Query:      args[0],
			ProjectID:  searchProject,
			NumResults: len(results),
			Results:    results,
		})
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tFILE\tTITLE\tTEXT")
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n", r.Score, deref(r.Filename), deref(r.Title), snippet(r.Text, 80))
	}
	return w.Flush()
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}
