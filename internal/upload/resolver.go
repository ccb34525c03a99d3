package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ResolveFiles resolves file paths from arguments, directory, and recursive options.
// Returns the files of kind want plus the sidecar files sharing their name,
// in a stable order: each primary file followed by its sidecars.
func ResolveFiles(args []string, dir string, recursive bool, want Kind) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	addFile := func(path string) error {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", path, err)
		}

		if seen[absPath] {
			return nil
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return fmt.Errorf("file not found: %s", path)
		}

		// Directories are handled by scanDirectory
		if info.IsDir() {
			return nil
		}

		if !Accepts(want, ParseKind(absPath)) {
			return nil
		}

		seen[absPath] = true
		files = append(files, absPath)

		if ParseKind(absPath) == want {
			for _, sidecar := range findSidecars(absPath) {
				if !seen[sidecar] {
					seen[sidecar] = true
					files = append(files, sidecar)
				}
			}
		}
		return nil
	}

	addAll := func(paths []string) {
		for _, p := range paths {
			// Unreadable entries are skipped, explicit files are checked below
			_ = addFile(p)
		}
	}

	for _, arg := range args {
		if strings.ContainsAny(arg, "*?[") {
			matches, err := filepath.Glob(arg)
			if err != nil {
				return nil, fmt.Errorf("invalid glob pattern %s: %w", arg, err)
			}
			addAll(matches)
			continue
		}

		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			dirFiles, err := scanDirectory(arg, recursive, want)
			if err != nil {
				return nil, err
			}
			addAll(dirFiles)
			continue
		}

		if err := addFile(arg); err != nil {
			return nil, err
		}
	}

	if dir != "" {
		dirFiles, err := scanDirectory(dir, recursive, want)
		if err != nil {
			return nil, err
		}
		addAll(dirFiles)
	}

	return files, nil
}

// scanDirectory lists primary files of kind want under dir
func scanDirectory(dir string, recursive bool, want Kind) ([]string, error) {
	var files []string

	walkFn := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip files with errors
		}

		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if ParseKind(path) == want {
			files = append(files, path)
		}
		return nil
	}

	if err := filepath.Walk(dir, walkFn); err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", dir, err)
	}

	return files, nil
}

// findSidecars returns the sidecar files next to primary that share its stem
func findSidecars(primary string) []string {
	entries, err := os.ReadDir(filepath.Dir(primary))
	if err != nil {
		return nil
	}

	base := filepath.Base(stem(primary))
	var sidecars []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(stem(name), base) {
			continue
		}
		if ParseKind(name) == KindSidecar {
			sidecars = append(sidecars, filepath.Join(filepath.Dir(primary), name))
		}
	}
	sort.Strings(sidecars)
	return sidecars
}
