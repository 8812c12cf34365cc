package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/szqshan/datamaster/internal"
)

var (
	storeData      string
	storeProcessed string
	storeParams    string
)

// storeCmd represents the store command
var storeCmd = &cobra.Command{
	Use:   "store <session-id>",
	Short: "Store a record into a session",
	Long: `Store one structured record into a session.

The record payload is JSON, passed inline, from a file (@path), or from
stdin (-). Duplicate payloads (same content fingerprint) are skipped and
reported, not stored twice.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID := args[0]

		raw, err := decodeJSONArg(storeData, true)
		if err != nil {
			return fmt.Errorf("invalid --data: %w", err)
		}
		processed, err := decodeJSONArg(storeProcessed, false)
		if err != nil {
			return fmt.Errorf("invalid --processed: %w", err)
		}
		params, err := decodeJSONArg(storeParams, false)
		if err != nil {
			return fmt.Errorf("invalid --params: %w", err)
		}

		registry, _, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		store, err := registry.OpenStore(sessionID)
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := store.Insert(raw, processed, params)
		if err != nil {
			return err
		}

		if res.Inserted {
			internal.PrintSuccess(fmt.Sprintf("Record stored, fingerprint: %.8s...", res.Fingerprint))
		} else {
			internal.PrintInfo(fmt.Sprintf("Duplicate record skipped, fingerprint: %.8s...", res.Fingerprint))
		}
		return nil
	},
}

// decodeJSONArg parses a JSON argument that may be inline text, @file, or
// "-" for stdin. Returns nil when the argument is empty and not required.
func decodeJSONArg(arg string, required bool) (interface{}, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		if required {
			return nil, fmt.Errorf("value is required")
		}
		return nil, nil
	}

	var text []byte
	switch {
	case arg == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		text = data
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(arg[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
		text = data
	default:
		text = []byte(arg)
	}

	var v interface{}
	if err := json.Unmarshal(text, &v); err != nil {
		return nil, fmt.Errorf("not valid JSON: %w", err)
	}
	return v, nil
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.Flags().StringVar(&storeData, "data", "", "Raw record payload (JSON, @file, or - for stdin)")
	storeCmd.Flags().StringVar(&storeProcessed, "processed", "", "Processed payload (JSON, optional)")
	storeCmd.Flags().StringVar(&storeParams, "params", "", "Originating request parameters (JSON, optional)")
	storeCmd.MarkFlagRequired("data")
}
