package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	createName        string
	createAPI         string
	createEndpoint    string
	createDescription string
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new storage session",
	Long: `Create a new isolated storage session for one API/endpoint pairing.

The session gets its own SQLite store file; records inserted into it are
deduplicated by content fingerprint independently of every other session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, _, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		meta, err := registry.Create(createName, createAPI, createEndpoint, createDescription)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}

		fmt.Println(meta.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&createName, "name", "", "Human-readable session name")
	createCmd.Flags().StringVar(&createAPI, "api", "", "Source API name")
	createCmd.Flags().StringVar(&createEndpoint, "endpoint", "", "Source endpoint name")
	createCmd.Flags().StringVar(&createDescription, "description", "", "Optional description")
	createCmd.MarkFlagRequired("name")
	createCmd.MarkFlagRequired("api")
	createCmd.MarkFlagRequired("endpoint")
}
