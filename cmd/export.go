package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/szqshan/datamaster/internal"
	"github.com/szqshan/datamaster/internal/export"
)

var (
	exportFormat string
	exportOut    string
	exportWhere  string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export session records to a file",
	Long: `Export a session's records to xlsx, csv or json.

Flat payload objects are expanded to one column per top-level field; nested
structures fall back to their serialized JSON text. The result can be
restricted with --where (a bare predicate or a full SELECT, both validated
by the SQL gate). Without --out a destination path is synthesized from the
session id and a timestamp.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		registry, cfg, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		gate := internal.NewGate(cfg.RowLimit)
		engine := export.NewEngine(registry, gate, cfg.ExportDir)

		path, rows, err := engine.Export(sessionID, exportWhere, format, exportOut)
		if err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Exported %d row(s) to %s", rows, path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "Export format (xlsx, csv, json)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Destination file path")
	exportCmd.Flags().StringVar(&exportWhere, "where", "", "Filter predicate or full SELECT statement")
}
