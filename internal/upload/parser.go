package upload

import (
	"path/filepath"
	"strings"
)

// Kind classifies a local file by what it contributes to an upload
type Kind string

const (
	KindVector  Kind = "vector"
	KindRaster  Kind = "raster"
	KindSidecar Kind = "sidecar"
	KindLock    Kind = "lock"
	KindUnknown Kind = "unknown"
)

const lockSuffix = ".lock"

var (
	vectorExts = map[string]bool{
		".shp": true, ".csv": true, ".kml": true, ".kmz": true,
		".tab": true, ".mif": true, ".gpx": true,
	}
	rasterExts = map[string]bool{
		".tif": true, ".tiff": true, ".jp2": true, ".img": true,
		".png": true, ".jpg": true, ".jpeg": true, ".ecw": true,
	}
	// files that only travel alongside a primary vector or raster file
	sidecarExts = map[string]bool{
		".dbf": true, ".shx": true, ".prj": true, ".cpg": true,
		".sbn": true, ".sbx": true, ".qix": true, ".xml": true,
		".dat": true, ".id": true, ".map": true, ".mid": true,
		".tfw": true, ".tifw": true, ".jgw": true, ".pgw": true,
		".aux": true, ".ovr": true,
	}
	// required companions of a shapefile
	shapefileRequired = []string{".shx", ".dbf"}
)

// IsLockFile reports whether name is an editor or GIS lock file
func IsLockFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), lockSuffix)
}

// ParseKind classifies path by its extension
func ParseKind(path string) Kind {
	name := filepath.Base(path)
	if IsLockFile(name) {
		return KindLock
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case vectorExts[ext]:
		return KindVector
	case rasterExts[ext]:
		return KindRaster
	case sidecarExts[ext]:
		return KindSidecar
	default:
		return KindUnknown
	}
}

// stem returns path without its extension
func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// Accepts reports whether a file of kind k belongs in an upload of want
func Accepts(want, k Kind) bool {
	return k == want || k == KindSidecar
}
