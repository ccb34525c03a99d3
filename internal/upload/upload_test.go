package upload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		path string
		want Kind
	}{
		{"roads.shp", KindVector},
		{"ROADS.SHP", KindVector},
		{"points.csv", KindVector},
		{"/data/places.kml", KindVector},
		{"scene.tif", KindRaster},
		{"scene.TIFF", KindRaster},
		{"ortho.jp2", KindRaster},
		{"roads.dbf", KindSidecar},
		{"roads.prj", KindSidecar},
		{"scene.tfw", KindSidecar},
		{"roads.shp.lock", KindLock},
		{"notes.txt", KindUnknown},
		{"README", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKind(tt.path))
		})
	}
}

func TestAccepts(t *testing.T) {
	assert.True(t, Accepts(KindVector, KindVector))
	assert.True(t, Accepts(KindVector, KindSidecar))
	assert.False(t, Accepts(KindVector, KindRaster))
	assert.False(t, Accepts(KindRaster, KindLock))
	assert.False(t, Accepts(KindRaster, KindUnknown))
}

func TestResolveFiles(t *testing.T) {
	t.Run("explicit shapefile brings its sidecars", func(t *testing.T) {
		dir := t.TempDir()
		shp := touch(t, dir, "roads.shp", "x")
		touch(t, dir, "roads.shx", "x")
		touch(t, dir, "roads.dbf", "x")
		touch(t, dir, "rivers.dbf", "x")
		touch(t, dir, "roads.shp.lock", "x")

		files, err := ResolveFiles([]string{shp}, "", false, KindVector)

		require.NoError(t, err)
		assert.Equal(t, []string{
			shp,
			filepath.Join(dir, "roads.dbf"),
			filepath.Join(dir, "roads.shx"),
		}, files)
	})

	t.Run("directory scan picks primaries of the wanted kind", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "a.csv", "x")
		touch(t, dir, "b.tif", "x")
		touch(t, dir, "nested/c.csv", "x")

		files, err := ResolveFiles(nil, dir, false, KindVector)
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(dir, "a.csv")}, files)

		files, err = ResolveFiles(nil, dir, true, KindVector)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "a.csv"),
			filepath.Join(dir, "nested", "c.csv"),
		}, files)
	})

	t.Run("glob patterns", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, dir, "one.tif", "x")
		touch(t, dir, "one.tfw", "x")
		touch(t, dir, "two.tif", "x")

		files, err := ResolveFiles([]string{filepath.Join(dir, "*.tif")}, "", false, KindRaster)

		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			filepath.Join(dir, "one.tif"),
			filepath.Join(dir, "one.tfw"),
			filepath.Join(dir, "two.tif"),
		}, files)
	})

	t.Run("duplicates are removed", func(t *testing.T) {
		dir := t.TempDir()
		csv := touch(t, dir, "a.csv", "x")

		files, err := ResolveFiles([]string{csv, csv}, dir, false, KindVector)

		require.NoError(t, err)
		assert.Equal(t, []string{csv}, files)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := ResolveFiles([]string{filepath.Join(t.TempDir(), "gone.csv")}, "", false, KindVector)
		assert.Error(t, err)
	})

	t.Run("bad glob is an error", func(t *testing.T) {
		_, err := ResolveFiles([]string{"[*.csv"}, "", false, KindVector)
		assert.Error(t, err)
	})
}

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	good := touch(t, dir, "a.csv", "x")
	sidecar := touch(t, dir, "a.prj", "x")
	empty := touch(t, dir, "empty.csv", "")
	raster := touch(t, dir, "b.tif", "x")
	lock := touch(t, dir, "a.csv.lock", "x")
	missing := filepath.Join(dir, "missing.csv")

	valid, skipped := ValidateFiles([]string{good, sidecar, empty, raster, lock, missing, dir}, KindVector)

	assert.Equal(t, []string{good, sidecar}, valid)
	require.Len(t, skipped, 5)

	messages := map[string]string{}
	for _, s := range skipped {
		assert.Equal(t, StatusSkipped, s.Status)
		messages[s.FilePath] = s.Message
	}
	assert.Equal(t, "File is empty", messages[empty])
	assert.Equal(t, "File type mismatch: expected vector, got raster", messages[raster])
	assert.Equal(t, "Lock file", messages[lock])
	assert.Equal(t, "File not found", messages[missing])
	assert.Equal(t, "Path is a directory, not a file", messages[dir])
}

func TestValidateBundle(t *testing.T) {
	t.Run("complete shapefile", func(t *testing.T) {
		err := ValidateBundle([]string{"/d/roads.shp", "/d/roads.shx", "/d/roads.DBF"}, KindVector)
		assert.NoError(t, err)
	})

	t.Run("shapefile missing companions", func(t *testing.T) {
		err := ValidateBundle([]string{"/d/roads.shp", "/d/roads.prj"}, KindVector)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".shx, .dbf")
	})

	t.Run("sidecars alone are rejected", func(t *testing.T) {
		err := ValidateBundle([]string{"/d/roads.prj"}, KindVector)
		assert.Error(t, err)
	})

	t.Run("raster needs a raster", func(t *testing.T) {
		assert.NoError(t, ValidateBundle([]string{"/d/a.tif", "/d/a.tfw"}, KindRaster))
		assert.Error(t, ValidateBundle([]string{"/d/a.csv"}, KindRaster))
	})
}

func TestBaseNames(t *testing.T) {
	assert.Equal(t, []string{"a.csv", "b.prj"}, BaseNames([]string{"/x/a.csv", "y/b.prj"}))
	assert.Empty(t, BaseNames(nil))
}

func TestUploadSummary(t *testing.T) {
	summary := NewUploadSummary([]UploadResult{
		{Status: StatusSuccess},
		{Status: StatusSuccess},
		{Status: StatusFailed},
		{Status: StatusSkipped},
	})

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Success)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	assert.True(t, summary.HasFailures())

	assert.False(t, NewUploadSummary(nil).HasFailures())
}
