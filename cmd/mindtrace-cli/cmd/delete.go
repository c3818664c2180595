package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/spf13/cobra"
)

var (
	deleteProject    string
	deleteCollection string
	deleteForce      bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"rm"},
	Short:   "Delete every chunk of a project",
	Long: `Delete every stored chunk whose project_id matches.

Examples:
  mindtrace delete --project acme
  mindtrace delete --project acme --force`,
	Args: cobra.NoArgs,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().StringVarP(&deleteProject, "project", "p", "", "Project ID to delete")
	deleteCmd.Flags().StringVar(&deleteCollection, "collection", entity.DefaultCollection, "Collection to delete from")
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation")
	_ = deleteCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if !deleteForce {
		fmt.Fprintf(out, "Delete all chunks of project '%s' from '%s'? [y/N]: ", deleteProject, deleteCollection)
		reader := bufio.NewReader(cmd.InOrStdin())
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Cancelled")
			return nil
		}
	}

	if err := svc.DeleteProject(cmd.Context(), deleteCollection, deleteProject); err != nil {
		return err
	}

	resp := entity.DeleteProjectResponse{
		Status:  "ok",
		Message: fmt.Sprintf("Vecteurs avec project_id=%s supprimés de '%s'", deleteProject, deleteCollection),
	}
	if outputFormat == outputJSON {
		return printJSON(out, resp)
	}
	fmt.Fprintln(out, resp.Message)
	return nil
}
