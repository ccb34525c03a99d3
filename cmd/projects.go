package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Short:   "List the projects you can access",
	Example: "  gme projects --json",
	Args:    cobra.NoArgs,
	RunE:    runProjects,
}

func init() {
	projectsCmd.GroupID = groupBrowse
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	client, err := app.apiClient(ctx)
	if err != nil {
		return err
	}

	projects, err := client.ListProjects(ctx)
	if err != nil {
		return err
	}

	if jsonMode {
		return printJSON(projects)
	}
	if len(projects) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\n", p.ID, p.Name)
	}
	return w.Flush()
}
