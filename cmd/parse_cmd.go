package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kebairia/backupwatch/internal/logsource"
	"github.com/kebairia/backupwatch/internal/report"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(20)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15"))
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Extract the backup report from a saved log without notifying",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readLog(cmd, args)
		if err != nil {
			return err
		}
		rep := report.Extract(text)
		if parseJSON {
			return rep.WriteJSON(cmd.OutOrStdout())
		}
		_, err = io.WriteString(cmd.OutOrStdout(), formatReport(rep))
		return err
	},
}

func readLog(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return (&logsource.File{Path: args[0]}).Fetch(cmd.Context(), "")
}

func formatReport(r report.Report) string {
	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}

	if !r.Succeeded {
		b.WriteString(errorStyle.Render("backup failed") + "\n\n")
		b.WriteString(r.ErrorExcerpt + "\n")
		return b.String()
	}

	b.WriteString(successStyle.Render("backup succeeded") + "\n\n")
	row("Archive name", r.ArchiveName)
	row("Start time", r.StartTime)
	row("End time", r.EndTime)
	row("Duration", r.Duration)
	row("Original size", r.OriginalSize)
	row("Compressed size", r.CompressedSize)
	row("Deduplicated size", r.DeduplicatedSize)
	row("Pruned data", r.PrunedData)
	return b.String()
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the report as JSON")
}
