package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mapsengine/gme-cli/internal/api"
	"github.com/mapsengine/gme-cli/internal/upload"
)

var (
	uploadAttribution     string
	uploadAcquisitionTime string
	uploadMaskType        string
)

var uploadRasterCmd = &cobra.Command{
	Use:   "raster [files...]",
	Short: "Upload a raster image (GeoTIFF, JPEG 2000, ...)",
	Example: `  gme upload raster --project P --name Ortho --attribution "Acme" scene.tif
  gme upload raster --project P --name Tiles --dir imagery/ -r --mask-type autoMask`,
	RunE: runUploadRaster,
}

func init() {
	uploadRasterCmd.Flags().StringVar(&uploadAttribution, "attribution", "", "Attribution shown with the raster")
	uploadRasterCmd.Flags().StringVar(&uploadAcquisitionTime, "acquisition-time", "", "Acquisition time (RFC 3339)")
	uploadRasterCmd.Flags().StringVar(&uploadMaskType, "mask-type", "", "Mask type (autoMask, none, alphaChannel)")
}

func runUploadRaster(cmd *cobra.Command, args []string) error {
	create := func(ctx context.Context, client *api.Client, fileNames []string) (*api.UploadingAsset, error) {
		return client.CreateRasterAssetForUploading(ctx, api.RasterAsset{
			ProjectID:       uploadProjectID,
			Name:            uploadName,
			Description:     uploadDescription,
			Files:           api.FileNames(fileNames),
			DraftAccessList: uploadACL,
			Attribution:     uploadAttribution,
			AcquisitionTime: uploadAcquisitionTime,
			Tags:            uploadTags,
			MaskType:        uploadMaskType,
		})
	}
	return runAssetUpload(cmd.Context(), args, upload.KindRaster, api.CategoryRasters, create)
}
