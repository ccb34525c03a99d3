package auth

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/mapsengine/gme-cli/internal/logger"
)

// FileStore keeps token state in a TOML file readable only by the current user
type FileStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]string
}

var _ TokenStore = (*FileStore)(nil)

// NewFileStore opens the TOML file at path, starting empty when it doesn't exist
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		filePath: path,
		data:     make(map[string]string),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.filePath
}

// Get returns the value for key
func (s *FileStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key], nil
}

// Set merges values and persists immediately
func (s *FileStore) Set(values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]string, len(s.data)+len(values))
	for k, v := range s.data {
		next[k] = v
	}
	for k, v := range values {
		next[k] = v
	}

	if err := s.save(next); err != nil {
		return err
	}
	s.data = next
	return nil
}

// Clear removes the file and forgets all values
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.data = make(map[string]string)
	return nil
}

// save writes data via a temp file and rename (caller must hold lock)
func (s *FileStore) save(data map[string]string) error {
	encoded, err := toml.Marshal(data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}

	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, encoded, 0600); err != nil {
		return err
	}
	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return err
	}
	return nil
}

// Load re-reads the file from disk
func (s *FileStore) Load() error {
	_, err := s.reload()
	return err
}

// reload re-reads the file and reports whether its contents differ from what
// the store already holds. The store's own writes read back unchanged.
func (s *FileStore) reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded := make(map[string]string)
	raw, err := os.ReadFile(s.filePath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return false, err
	default:
		if err := toml.Unmarshal(raw, &loaded); err != nil {
			return false, fmt.Errorf("failed to parse %s: %w", s.filePath, err)
		}
	}

	if maps.Equal(s.data, loaded) {
		return false, nil
	}
	s.data = loaded
	return true, nil
}

// Watch reloads the store whenever another process rewrites the file and
// then calls onChange. Events caused by this store's own writes are ignored.
// It blocks until ctx is done.
func (s *FileStore) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, atomic renames replace the file inode
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.filePath) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			changed, err := s.reload()
			if err != nil {
				logger.Warn("token file reload failed: %v", err)
				continue
			}
			if changed && onChange != nil {
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("token file watcher: %v", err)
		}
	}
}
