// internal/data/storage.go
package data

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested file does not exist
var ErrNotFound = errors.New("file not found")

// FileInfo describes one file in the data directory
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Storage defines the interface for accessing the raw dataset directory
type Storage interface {
	ListFiles() ([]FileInfo, error)
	Stat(name string) (FileInfo, error)
	Open(name string) (io.ReadCloser, error)
}

// LocalStorage implements Storage for a local directory. Only regular files
// directly inside the base directory are visible.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

// NewStorage creates a LocalStorage after checking that basePath is a directory
func NewStorage(basePath string) (*LocalStorage, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("reading data path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data path %s is not a directory", basePath)
	}
	return NewLocalStorage(basePath), nil
}

// BasePath returns the directory being served
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// validatePath ensures the constructed path stays within basePath
func (s *LocalStorage) validatePath(parts ...string) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.Join(parts...))
	cleanPath := filepath.Clean(fullPath)
	cleanBase := filepath.Clean(s.basePath)

	// Check if cleanPath is inside or equal to cleanBase
	relPath, err := filepath.Rel(cleanBase, cleanPath)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}

	// Reject if path tries to escape (starts with ..)
	if strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("invalid path: outside base directory")
	}

	return cleanPath, nil
}

// filePath resolves name to a file directly inside basePath
func (s *LocalStorage) filePath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return s.validatePath(name)
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ListFiles returns every visible regular file, sorted by name
func (s *LocalStorage) ListFiles() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("reading base path: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if !e.Type().IsRegular() || hidden(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Stat returns metadata for one file
func (s *LocalStorage) Stat(name string) (FileInfo, error) {
	path, err := s.filePath(name)
	if err != nil {
		return FileInfo{}, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && (!info.Mode().IsRegular() || hidden(name))) {
		return FileInfo{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return FileInfo{}, fmt.Errorf("reading file info: %w", err)
	}
	return FileInfo{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// Open opens a file for reading
func (s *LocalStorage) Open(name string) (io.ReadCloser, error) {
	if _, err := s.Stat(name); err != nil {
		return nil, err
	}
	path, err := s.filePath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}
