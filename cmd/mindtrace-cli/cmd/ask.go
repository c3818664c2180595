package cmd

import (
	"fmt"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/spf13/cobra"
)

var (
	askProject    string
	askNumResults int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the documents of a project",
	Long: `Retrieve the most relevant chunks of the project and ask the chat model to
answer from them.

Examples:
  mindtrace ask "When is the release due?" --project acme`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askProject, "project", "p", "", "Project ID to query")
	askCmd.Flags().IntVarP(&askNumResults, "num-results", "n", entity.DefaultNumResults, "Number of chunks given to the model")
	_ = askCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	answer, err := svc.Ask(cmd.Context(), args[0], askProject, askNumResults)
	if err != nil {
		return err
	}

	if outputFormat == outputJSON {
		return printJSON(out, answer)
	}

	fmt.Fprintln(out, answer.Answer)
	if len(answer.Contexts) > 0 {
		fmt.Fprintln(out, "\nSources:")
		for _, c := range answer.Contexts {
			fmt.Fprintf(out, "  - %s (score %.3f)\n", deref(c.Source), c.Score)
		}
	}
	return nil
}
