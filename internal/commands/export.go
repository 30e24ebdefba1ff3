package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/diogo/monachat/internal/history"
)

var exportCmd = &cobra.Command{
	Use:   "export <contact>",
	Short: "Export a chat to markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		return runExport(cmd.OutOrStdout(), args[0], format, output)
	},
}

func init() {
	exportCmd.Flags().StringP("format", "F", string(history.ExportFormatMarkdown), "Export format (markdown, json)")
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
}

func runExport(w io.Writer, ref, formatName, output string) error {
	format, err := history.ParseExportFormat(formatName)
	if err != nil {
		return err
	}

	app, err := openApp(deps, false)
	if err != nil {
		return err
	}
	defer app.Close()

	id, err := resolveContact(app, ref)
	if err != nil {
		return err
	}

	data, err := history.Export(app.Timeline, id, format)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	if output == "" {
		_, err = w.Write(data)
		return err
	}
	if err := writeFile(output, data); err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported %s to %s\n", id, output)
	return nil
}
