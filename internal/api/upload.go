package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/upload"
	"github.com/mapsengine/gme-cli/internal/utils"
)

// CreateVectorTableAssetForUploading registers a new vector table and returns its upload handle
func (c *Client) CreateVectorTableAssetForUploading(ctx context.Context, asset VectorTableAsset) (*UploadingAsset, error) {
	return c.createForUploading(ctx, CategoryTables, asset.ProjectID, asset)
}

// CreateRasterAssetForUploading registers a new raster and returns its upload handle
func (c *Client) CreateRasterAssetForUploading(ctx context.Context, asset RasterAsset) (*UploadingAsset, error) {
	return c.createForUploading(ctx, CategoryRasters, asset.ProjectID, asset)
}

func (c *Client) createForUploading(ctx context.Context, category UploadCategory, projectID string, descriptor interface{}) (*UploadingAsset, error) {
	op := "create " + string(category) + " asset"
	if projectID == "" {
		return nil, apperrors.New(apperrors.ErrAPIRequest, op, fmt.Errorf("project id is required"))
	}

	data, err := c.postJSON(ctx, string(category)+"/upload", url.Values{"projectId": {projectID}}, descriptor)
	if err != nil {
		return nil, err
	}

	var asset UploadingAsset
	if err := decode(op, data, &asset); err != nil {
		return nil, err
	}
	if asset.ID == "" {
		return nil, apperrors.New(apperrors.ErrAPIRequest, op, fmt.Errorf("response has no asset id"))
	}

	c.log.Info().Str("asset_id", asset.ID).Str("category", string(category)).Msg("asset created for uploading")
	return &asset, nil
}

// UploadFilesToAsset uploads files one after another in input order. Lock
// files are skipped. A failed file does not stop the remaining uploads and
// nothing already uploaded is rolled back. progress may be nil.
func (c *Client) UploadFilesToAsset(ctx context.Context, assetID string, category UploadCategory, files []string, progress upload.ProgressFunc) []upload.UploadResult {
	results := make([]upload.UploadResult, 0, len(files))

	for i, path := range files {
		name := filepath.Base(path)
		if progress != nil {
			progress(name, i, len(files))
		}

		result := upload.UploadResult{FilePath: path, FileName: name}

		switch {
		case upload.IsLockFile(name):
			result.Status = upload.StatusSkipped
			result.Message = "Lock file"
		case ctx.Err() != nil:
			result.Status = upload.StatusSkipped
			result.Error = ctx.Err()
			result.Message = "Cancelled"
		default:
			start := time.Now()
			if err := c.StreamingUploadFileToAsset(ctx, assetID, category, path); err != nil {
				result.Status = upload.StatusFailed
				result.Error = err
				result.Message = "Upload failed"
				c.log.Warn().Err(err).Str("file", name).Msg("file upload failed, continuing")
			} else {
				result.Status = upload.StatusSuccess
				result.Message = fmt.Sprintf("Uploaded in %v", time.Since(start).Round(time.Millisecond))
			}
		}

		results = append(results, result)
	}

	if progress != nil {
		progress("", len(files), len(files))
	}
	return results
}

// StreamingUploadFileToAsset uploads one file as a multipart body streamed
// from disk. The endpoint answers 204 No Content on success.
func (c *Client) StreamingUploadFileToAsset(ctx context.Context, assetID string, category UploadCategory, path string) error {
	name := filepath.Base(path)
	op := "upload " + name

	if _, err := os.Stat(path); err != nil {
		return apperrors.New(apperrors.ErrAPIRequest, op, err)
	}

	target := c.endpoint(c.uploadURL, string(category)+"/"+url.PathEscape(assetID)+"/files", url.Values{
		"uploadType": {"multipart"},
		"filename":   {name},
	})

	body := func() (io.Reader, string, error) {
		boundary := NewBoundary(time.Now())
		return streamFile(path, name, boundary), MultipartContentType(boundary), nil
	}

	resp, err := c.do(ctx, op, http.MethodPost, target, body, http.StatusNoContent)
	if err != nil {
		return err
	}
	utils.DrainAndClose(resp.Body)
	return nil
}
