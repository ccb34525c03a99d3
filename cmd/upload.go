package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mapsengine/gme-cli/internal/api"
	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/logger"
	"github.com/mapsengine/gme-cli/internal/ui"
	"github.com/mapsengine/gme-cli/internal/upload"
)

// Flags shared by the upload subcommands
var (
	uploadProjectID   string
	uploadName        string
	uploadDescription string
	uploadACL         string
	uploadTags        []string
	uploadDir         string
	uploadRecursive   bool
	uploadDryRun      bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Create an asset and upload its files",
	Long: `Create a new vector table or raster asset in a project and upload its files.

Shapefiles are uploaded together with their sidecar files (.shx, .dbf, .prj, ...),
which are picked up automatically from the same directory. Lock files are skipped.`,
	Example: `  gme upload vector --project P --name Roads data/roads.shp
  gme upload raster --project P --name Ortho --dir imagery/ -r`,
}

func init() {
	for _, c := range []*cobra.Command{uploadVectorCmd, uploadRasterCmd} {
		c.Flags().StringVarP(&uploadProjectID, "project", "p", "", "Project ID (required)")
		c.Flags().StringVarP(&uploadName, "name", "n", "", "Asset name (required)")
		c.Flags().StringVar(&uploadDescription, "description", "", "Asset description")
		c.Flags().StringVar(&uploadACL, "acl", "", "Draft access list name")
		c.Flags().StringArrayVar(&uploadTags, "tag", nil, "Tag to add to the asset (repeatable)")
		c.Flags().StringVarP(&uploadDir, "dir", "d", "", "Directory to search for files")
		c.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "Search directories recursively")
		c.Flags().BoolVar(&uploadDryRun, "dry-run", false, "Show what would be uploaded without actually uploading")
		_ = c.MarkFlagRequired("project")
		_ = c.MarkFlagRequired("name")
		uploadCmd.AddCommand(c)
	}
	uploadCmd.GroupID = groupData
	rootCmd.AddCommand(uploadCmd)
}

// assetCreator registers the asset for the given file names
type assetCreator func(ctx context.Context, client *api.Client, fileNames []string) (*api.UploadingAsset, error)

func runAssetUpload(ctx context.Context, args []string, want upload.Kind, category api.UploadCategory, create assetCreator) error {
	files, err := upload.ResolveFiles(args, uploadDir, uploadRecursive, want)
	if err != nil {
		return apperrors.NewUsageError(fmt.Sprintf("Failed to resolve files: %v", err))
	}
	if len(files) == 0 {
		return apperrors.NewUsageError(fmt.Sprintf("No %s files found to upload", want))
	}

	validFiles, skipped := upload.ValidateFiles(files, want)
	for _, s := range skipped {
		say("  [SKIPPED] %s\n", s.FileName)
		say("    Reason: %s\n", s.Message)
	}
	if err := upload.ValidateBundle(validFiles, want); err != nil {
		return apperrors.NewUsageError(err.Error())
	}

	if uploadDryRun {
		fmt.Printf("\n[DRY RUN] Would create %s asset %q with %d file(s):\n", want, uploadName, len(validFiles))
		for _, f := range validFiles {
			fmt.Printf("  - %s %s\n", ui.ShortenPath(f), ui.FaintStyle.Render(ui.FileSize(f)))
		}
		return nil
	}

	app, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	client, err := app.apiClient(ctx)
	if err != nil {
		return err
	}

	token, err := app.session.GetToken(ctx)
	if err != nil {
		return apperrors.NewAuthError(err, "Session expired. Run 'gme login' again")
	}
	if token.IsViewOnly {
		return apperrors.NewAuthError(apperrors.ErrAuthProtocol, "Signed in with view-only access. Run 'gme login' without --view-only to upload")
	}

	asset, err := create(ctx, client, upload.BaseNames(validFiles))
	if err != nil {
		logger.Error("Failed to create asset", err)
		return err
	}
	say("\n✓ Created asset %s\n", ui.BoldStyle.Render(asset.ID))
	say("Uploading %d file(s)...\n", len(validFiles))

	var progress upload.ProgressFunc
	if !quietMode {
		progress = ui.NewProgressBar(os.Stdout).Report
	}
	results := client.UploadFilesToAsset(ctx, asset.ID, category, validFiles, progress)

	summary := upload.NewUploadSummary(append(skipped, results...))
	displayUploadSummary(summary)

	if summary.HasFailures() {
		return apperrors.NewNetworkError(apperrors.ErrAPIRequest, fmt.Sprintf("%d file(s) failed to upload to asset %s", summary.Failed, asset.ID))
	}
	return nil
}

func displayUploadSummary(summary *upload.UploadSummary) {
	if quietMode && !summary.HasFailures() {
		return
	}

	for _, r := range summary.Results {
		if r.Status == upload.StatusFailed {
			fmt.Printf("  %s %s\n", ui.ErrorStyle.Render("[FAILED]"), r.FileName)
			if r.Error != nil {
				fmt.Printf("    Error: %v\n", r.Error)
			}
		}
	}

	fmt.Println()
	fmt.Printf("Upload summary: %d total, %s, %s, %d skipped\n",
		summary.Total,
		ui.SuccessStyle.Render(fmt.Sprintf("%d succeeded", summary.Success)),
		failedLabel(summary.Failed),
		summary.Skipped)
}

func failedLabel(n int) string {
	label := fmt.Sprintf("%d failed", n)
	if n > 0 {
		return ui.ErrorStyle.Render(label)
	}
	return label
}
