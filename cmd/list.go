package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listAPI string

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active storage sessions",
	Long:  `List all active storage sessions, optionally filtered by API name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, _, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		sessions, err := registry.List(listAPI)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No storage sessions found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, headerStyle.Render("SESSION ID")+"\t"+
			headerStyle.Render("NAME")+"\t"+
			headerStyle.Render("API/ENDPOINT")+"\t"+
			headerStyle.Render("RECORDS")+"\t"+
			headerStyle.Render("CREATED"))
		for _, meta := range sessions {
			created := ""
			if !meta.CreatedAt.IsZero() {
				created = meta.CreatedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				idStyle.Render(meta.ID),
				meta.Name,
				fmt.Sprintf("%s/%s", meta.APIName, meta.EndpointName),
				countStyle.Render(fmt.Sprintf("%d", meta.TotalRecords)),
				dateStyle.Render(created))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listAPI, "api", "", "Filter by exact API name")
}
