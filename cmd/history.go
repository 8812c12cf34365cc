package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Show a session's operation history",
	Long:  `Show the append-only operation log of a session, oldest first.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		registry, _, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		// Resolve first so a bad id fails with session-not-found rather
		// than an empty listing.
		if _, err := registry.Get(sessionID); err != nil {
			return err
		}

		entries, err := registry.OperationLog().List(sessionID)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SEQ\tKIND\tRECORDS\tTIME\tDETAIL")
		for _, entry := range entries {
			ts := ""
			if !entry.Timestamp.IsZero() {
				ts = entry.Timestamp.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
				entry.Seq, entry.Kind, entry.Records, ts, entry.Detail)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
