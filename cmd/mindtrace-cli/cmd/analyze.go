package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/futig/mindtrace-ai/internal/entity"
	"github.com/futig/mindtrace-ai/internal/pkg/formatter"
	"github.com/spf13/cobra"
)

var (
	analyzeOld     string
	analyzeOldFile string
	analyzeNew     string
	analyzeNewFile string
	analyzeFormat  string
	analyzeOut     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare two versions of a requirement description",
	Long: `Ask the chat model what changed between two versions of a ticket
description and render the report.

Examples:
  mindtrace analyze --old "Login by email" --new "Login by email or SSO"
  mindtrace analyze --old-file v1.txt --new-file v2.txt --format pdf --out changes.pdf`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOld, "old", "", "Previous description")
	analyzeCmd.Flags().StringVar(&analyzeOldFile, "old-file", "", "File holding the previous description")
	analyzeCmd.Flags().StringVar(&analyzeNew, "new", "", "Updated description")
	analyzeCmd.Flags().StringVar(&analyzeNewFile, "new-file", "", "File holding the updated description")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", string(entity.ReportFormatJSON), "Report format: json, markdown, docx, pdf")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "Write the report to this file instead of stdout")
	analyzeCmd.MarkFlagsMutuallyExclusive("old", "old-file")
	analyzeCmd.MarkFlagsMutuallyExclusive("new", "new-file")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format := entity.ReportFormat(analyzeFormat)
	if !format.IsValid() {
		return fmt.Errorf("unsupported format %q (json, markdown, docx, pdf)", analyzeFormat)
	}
	if (format == entity.ReportFormatDOCX || format == entity.ReportFormatPDF) && analyzeOut == "" {
		return errors.New("--out is required for binary formats")
	}

	oldDesc, err := textOrFile(analyzeOld, analyzeOldFile)
	if err != nil {
		return err
	}
	newDesc, err := textOrFile(analyzeNew, analyzeNewFile)
	if err != nil {
		return err
	}

	report, err := svc.Analyze(cmd.Context(), oldDesc, newDesc)
	if err != nil {
		return err
	}

	if format == entity.ReportFormatJSON {
		if analyzeOut == "" {
			return printJSON(cmd.OutOrStdout(), report)
		}
		f, err := os.Create(analyzeOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", analyzeOut, err)
		}
		defer f.Close()
		return printJSON(f, report)
	}

	fmtr, err := formatter.NewFactory().Create(format)
	if err != nil {
		return err
	}
	data, err := fmtr.Format(report)
	if err != nil {
		return fmt.Errorf("format report: %w", err)
	}

	if analyzeOut == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(analyzeOut, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", analyzeOut, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", analyzeOut)
	return nil
}

func textOrFile(text, path string) (string, error) {
	if path == "" {
		return text, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
