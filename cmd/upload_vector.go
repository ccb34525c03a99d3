package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mapsengine/gme-cli/internal/api"
	"github.com/mapsengine/gme-cli/internal/upload"
)

var uploadEncoding string

var uploadVectorCmd = &cobra.Command{
	Use:   "vector [files...]",
	Short: "Upload a vector table (shapefile, CSV, KML, ...)",
	Example: `  # Upload a shapefile with its sidecars
  gme upload vector --project P --name Roads data/roads.shp

  # Upload every CSV in a directory
  gme upload vector --project P --name Points --dir data/ --encoding UTF-8`,
	RunE: runUploadVector,
}

func init() {
	uploadVectorCmd.Flags().StringVar(&uploadEncoding, "encoding", "", "Source character encoding")
}

func runUploadVector(cmd *cobra.Command, args []string) error {
	create := func(ctx context.Context, client *api.Client, fileNames []string) (*api.UploadingAsset, error) {
		return client.CreateVectorTableAssetForUploading(ctx, api.VectorTableAsset{
			ProjectID:       uploadProjectID,
			Name:            uploadName,
			Description:     uploadDescription,
			Files:           api.FileNames(fileNames),
			DraftAccessList: uploadACL,
			SourceEncoding:  uploadEncoding,
			Tags:            uploadTags,
		})
	}
	return runAssetUpload(cmd.Context(), args, upload.KindVector, api.CategoryTables, create)
}
