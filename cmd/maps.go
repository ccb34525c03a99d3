package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mapsengine/gme-cli/internal/api"
	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/ui"
)

var mapsProjectID string

var mapsCmd = &cobra.Command{
	Use:     "maps",
	Short:   "List the maps in a project",
	Example: "  gme maps --project 06136759344167181854",
	Args:    cobra.NoArgs,
	RunE:    runMaps,
}

var mapCmd = &cobra.Command{
	Use:     "map ID",
	Short:   "Show a map with its folders and layers",
	Example: "  gme map 06136759344167181854-11845109403981099587",
	Args:    cobra.ExactArgs(1),
	RunE:    runMap,
}

func init() {
	mapsCmd.Flags().StringVarP(&mapsProjectID, "project", "p", "", "Project ID (required)")
	_ = mapsCmd.MarkFlagRequired("project")
	mapsCmd.GroupID = groupBrowse
	rootCmd.AddCommand(mapsCmd)
	mapCmd.GroupID = groupBrowse
	rootCmd.AddCommand(mapCmd)
}

func runMaps(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if strings.TrimSpace(mapsProjectID) == "" {
		return apperrors.NewUsageError("--project is required")
	}

	app, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	client, err := app.apiClient(ctx)
	if err != nil {
		return err
	}

	maps, err := client.ListMapsByProject(ctx, mapsProjectID)
	if err != nil {
		return err
	}

	if jsonMode {
		return printJSON(maps)
	}
	if len(maps) == 0 {
		fmt.Println("No maps found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tLAYERS")
	for _, m := range maps {
		fmt.Fprintf(w, "%s\t%s\t%d\n", m.ID, m.Name, countLayers(m.Layers, m.Folders))
	}
	return w.Flush()
}

func runMap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	client, err := app.apiClient(ctx)
	if err != nil {
		return err
	}

	m, err := client.GetMapByID(ctx, args[0])
	if err != nil {
		return err
	}

	if jsonMode {
		return printJSON(m)
	}

	fmt.Println(ui.BoldStyle.Render(m.Name))
	fmt.Printf("  ID:          %s\n", m.ID)
	fmt.Printf("  Project:     %s\n", orDash(m.ProjectID))
	fmt.Printf("  Description: %s\n", orDash(m.Description))
	if len(m.Bbox) == 4 {
		fmt.Printf("  Bbox:        %v\n", m.Bbox)
	}
	printLayers(m.Layers, "  ")
	printFolders(m.Folders, "  ")
	return nil
}

func countLayers(layers []api.MapLayer, folders []api.MapFolder) int {
	n := len(layers)
	for _, f := range folders {
		n += countLayers(f.Layers, f.Folders)
	}
	return n
}

func printLayers(layers []api.MapLayer, indent string) {
	for _, l := range layers {
		fmt.Printf("%s- %s %s\n", indent, l.Name, ui.FaintStyle.Render("("+l.ID+")"))
	}
}

func printFolders(folders []api.MapFolder, indent string) {
	for _, f := range folders {
		fmt.Printf("%s+ %s/\n", indent, f.Name)
		printLayers(f.Layers, indent+"  ")
		printFolders(f.Folders, indent+"  ")
	}
}
