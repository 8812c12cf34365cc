package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/szqshan/datamaster/internal"
)

var queryLimit int

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <session-id> <sql>",
	Short: "Run a read-only SQL query against a session",
	Long: `Run a read-only SQL query against a session's records table (api_data).

Only single SELECT statements and PRAGMA table_info are allowed; write
statements, multiple statements and SQL comments are rejected. Queries
without an explicit LIMIT are capped at the configured row ceiling. Use
json_extract(raw_data, '$.field') to filter and project over the payload.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, sqlText := args[0], args[1]

		registry, cfg, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		rowLimit := cfg.RowLimit
		if queryLimit > 0 && queryLimit < rowLimit {
			rowLimit = queryLimit
		}
		gate := internal.NewGate(rowLimit)

		rewritten, err := gate.Check(sqlText)
		if err != nil {
			return err
		}

		store, err := registry.OpenStore(sessionID)
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := store.Query(rewritten, nil, rowLimit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Row limit for this query (capped at the configured ceiling)")
}
