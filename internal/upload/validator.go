package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateFiles splits files into those that can be uploaded as kind want
// and skipped results explaining why the rest cannot
func ValidateFiles(files []string, want Kind) ([]string, []UploadResult) {
	var validFiles []string
	var skipped []UploadResult

	skip := func(file, message string, err error) {
		skipped = append(skipped, UploadResult{
			FilePath: file,
			FileName: filepath.Base(file),
			Status:   StatusSkipped,
			Error:    err,
			Message:  message,
		})
	}

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			skip(file, "File not found", err)
			continue
		}

		if info.IsDir() {
			skip(file, "Path is a directory, not a file", nil)
			continue
		}

		kind := ParseKind(file)
		if kind == KindLock {
			skip(file, "Lock file", nil)
			continue
		}
		if !Accepts(want, kind) {
			skip(file, fmt.Sprintf("File type mismatch: expected %s, got %s", want, kind), nil)
			continue
		}

		if info.Size() == 0 {
			skip(file, "File is empty", nil)
			continue
		}

		validFiles = append(validFiles, file)
	}

	return validFiles, skipped
}

// ValidateBundle checks that an upload has a primary file and that every
// shapefile travels with its required companions
func ValidateBundle(files []string, want Kind) error {
	present := make(map[string]bool, len(files))
	primaries := 0
	for _, f := range files {
		present[strings.ToLower(f)] = true
		if ParseKind(f) == want {
			primaries++
		}
	}

	if primaries == 0 {
		return fmt.Errorf("no %s file to upload", want)
	}

	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f), ".shp") {
			continue
		}
		base := strings.ToLower(stem(f))
		var missing []string
		for _, ext := range shapefileRequired {
			if !present[base+ext] {
				missing = append(missing, ext)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("shapefile %s is missing %s", filepath.Base(f), strings.Join(missing, ", "))
		}
	}

	return nil
}

// BaseNames returns the file names of paths, as listed in asset descriptors
func BaseNames(paths []string) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}
