package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/szqshan/datamaster/internal"
)

var deleteYes bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a storage session and its data",
	Long: `Delete a storage session.

This removes the session's metadata, its operation history, and its entire
store file. Deletion is irreversible; the command refuses to run without
--yes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		if !deleteYes {
			return fmt.Errorf("deleting a session irreversibly destroys all of its stored data; re-run with --yes to confirm")
		}

		registry, _, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		meta, err := registry.Get(sessionID)
		if err != nil {
			return err
		}

		if err := registry.Delete(sessionID); err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Session %s (%s) deleted. This cannot be undone.", sessionID, meta.Name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "Confirm irreversible deletion")
}
