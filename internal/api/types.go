package api

// AssetType enumerates Maps Engine asset types
type AssetType string

const (
	AssetTypeNone             AssetType = "none"
	AssetTypeMap              AssetType = "map"
	AssetTypeLayer            AssetType = "layer"
	AssetTypeImage            AssetType = "image"
	AssetTypeRasterCollection AssetType = "rasterCollection"
	AssetTypeTable            AssetType = "table"
)

// UploadCategory selects the upload endpoint family
type UploadCategory string

const (
	CategoryTables  UploadCategory = "tables"
	CategoryRasters UploadCategory = "rasters"
)

// Project is a Maps Engine project the user can access
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProjectList is one page of projects
type ProjectList struct {
	Projects      []Project `json:"projects"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
}

// Map is a published or draft map
type Map struct {
	ID          string      `json:"id"`
	ProjectID   string      `json:"projectId,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Bbox        []float64   `json:"bbox,omitempty"`
	Folders     []MapFolder `json:"folders,omitempty"`
	Layers      []MapLayer  `json:"layers,omitempty"`
}

// MapFolder groups layers and nested folders inside a map
type MapFolder struct {
	Name    string      `json:"name"`
	Folders []MapFolder `json:"folders,omitempty"`
	Layers  []MapLayer  `json:"layers,omitempty"`
}

// MapLayer is a layer referenced by a map
type MapLayer struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	DatasourceType string    `json:"datasourceType,omitempty"`
	Visibility     string    `json:"visibility,omitempty"`
	Bbox           []float64 `json:"bbox,omitempty"`
}

// MapList is one page of maps
type MapList struct {
	Maps          []Map  `json:"maps"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// Asset is any Maps Engine asset
type Asset struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Type        AssetType `json:"type"`
	URL         string    `json:"url,omitempty"`
	Bbox        []float64 `json:"bbox,omitempty"`
}

// UploadableFileName names one file of an asset being created
type UploadableFileName struct {
	Filename string `json:"filename"`
}

// VectorTableAsset describes a vector table to create before its files are uploaded
type VectorTableAsset struct {
	ProjectID       string               `json:"projectId"`
	Name            string               `json:"name"`
	Description     string               `json:"description,omitempty"`
	Files           []UploadableFileName `json:"files"`
	DraftAccessList string               `json:"draftAccessList,omitempty"`
	SourceEncoding  string               `json:"sourceEncoding,omitempty"`
	Tags            []string             `json:"tags,omitempty"`
}

// RasterAsset describes a raster to create before its files are uploaded
type RasterAsset struct {
	ProjectID       string               `json:"projectId"`
	Name            string               `json:"name"`
	Description     string               `json:"description,omitempty"`
	Files           []UploadableFileName `json:"files"`
	DraftAccessList string               `json:"draftAccessList,omitempty"`
	Attribution     string               `json:"attribution,omitempty"`
	AcquisitionTime string               `json:"acquisitionTime,omitempty"`
	Tags            []string             `json:"tags,omitempty"`
	MaskType        string               `json:"maskType,omitempty"`
}

// UploadingAsset is the handle returned when an upload is initiated
type UploadingAsset struct {
	ID              string               `json:"id"`
	ProjectID       string               `json:"projectId,omitempty"`
	Name            string               `json:"name,omitempty"`
	Files           []UploadableFileName `json:"files,omitempty"`
	ProcessingState string               `json:"processingStatus,omitempty"`
}

// FileNames converts base names into the descriptor file list
func FileNames(names []string) []UploadableFileName {
	files := make([]UploadableFileName, 0, len(names))
	for _, n := range names {
		files = append(files, UploadableFileName{Filename: n})
	}
	return files
}
