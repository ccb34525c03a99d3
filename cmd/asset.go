package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mapsengine/gme-cli/internal/ui"
)

var assetCmd = &cobra.Command{
	Use:     "asset ID",
	Short:   "Show an asset",
	Example: "  gme asset 06136759344167181854-08747524584823418286",
	Args:    cobra.ExactArgs(1),
	RunE:    runAsset,
}

func init() {
	assetCmd.GroupID = groupBrowse
	rootCmd.AddCommand(assetCmd)
}

func runAsset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	app, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	client, err := app.apiClient(ctx)
	if err != nil {
		return err
	}

	asset, err := client.GetAssetByID(ctx, args[0])
	if err != nil {
		return err
	}

	if jsonMode {
		return printJSON(asset)
	}

	fmt.Println(ui.BoldStyle.Render(asset.Name))
	fmt.Printf("  ID:          %s\n", asset.ID)
	fmt.Printf("  Type:        %s\n", orDash(string(asset.Type)))
	fmt.Printf("  Project:     %s\n", orDash(asset.ProjectID))
	fmt.Printf("  Description: %s\n", orDash(asset.Description))
	fmt.Printf("  URL:         %s\n", orDash(asset.URL))
	if len(asset.Bbox) == 4 {
		fmt.Printf("  Bbox:        %v\n", asset.Bbox)
	}
	return nil
}
