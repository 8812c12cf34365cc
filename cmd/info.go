package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/szqshan/datamaster/internal"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info [session-id]",
	Short: "Show storage or session details",
	Long: `Without arguments, show the storage location and session count.
With a session id, show the session's metadata, record count and the schema
of its records table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, cfg, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		if len(args) == 0 {
			sessions, err := registry.List("")
			if err != nil {
				return err
			}
			fmt.Printf("Storage directory: %s\n", cfg.StorageDir)
			fmt.Printf("Row ceiling:       %d\n", cfg.RowLimit)
			fmt.Printf("Active sessions:   %d\n", len(sessions))
			return nil
		}

		sessionID := args[0]
		meta, err := registry.Get(sessionID)
		if err != nil {
			return err
		}

		store, err := registry.OpenStore(sessionID)
		if err != nil {
			return err
		}
		defer store.Close()

		count, err := store.RowCount()
		if err != nil {
			return err
		}

		fmt.Printf("Session:     %s\n", meta.ID)
		fmt.Printf("Name:        %s\n", meta.Name)
		fmt.Printf("API:         %s/%s\n", meta.APIName, meta.EndpointName)
		if meta.Description != "" {
			fmt.Printf("Description: %s\n", meta.Description)
		}
		fmt.Printf("Records:     %d\n", count)
		fmt.Printf("Store file:  %s\n", meta.FilePath)
		if !meta.CreatedAt.IsZero() {
			fmt.Printf("Created:     %s\n", meta.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		// Table schema through the gate's introspection allowance.
		gate := internal.NewGate(cfg.RowLimit)
		pragma, err := gate.Check("PRAGMA table_info(api_data)")
		if err != nil {
			return err
		}
		schema, err := store.Query(pragma, nil, 0)
		if err != nil {
			return err
		}
		fmt.Println("\nColumns:")
		for _, row := range schema.Rows {
			// PRAGMA table_info: cid, name, type, notnull, dflt_value, pk
			if len(row) >= 3 {
				fmt.Printf("  %v %v\n", row[1], row[2])
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
