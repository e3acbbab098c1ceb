package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Storage is the file access the patch engine needs. Paths are slash-separated and relative
// to the storage root.
type Storage interface {
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
	Remove(path string) error
	Exists(path string) (bool, error)
	MkdirAll(dir string) error
}

// OSStorage is a Storage on the local disk rooted at a base directory.
type OSStorage struct {
	root string
}

// NewOSStorage creates an OSStorage rooted at baseDir. An empty baseDir means the current
// working directory.
func NewOSStorage(baseDir string) (*OSStorage, error) {
	if baseDir == "" {
		baseDir = "."
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve base directory %q: %w", baseDir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("could not open base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base directory %s is not a directory", abs)
	}
	return &OSStorage{root: abs}, nil
}

// Root returns the absolute base directory.
func (s *OSStorage) Root() string {
	return s.root
}

// Resolve returns the absolute path for a storage-relative path. Paths that escape the root
// are rejected.
func (s *OSStorage) Resolve(path string) (string, error) {
	native := filepath.FromSlash(path)
	var abs string
	if filepath.IsAbs(native) {
		abs = filepath.Clean(native)
	} else {
		abs = filepath.Join(s.root, native)
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "", fmt.Errorf("path %q resolves to the base directory itself", path)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes base directory %s", path, s.root)
	}
	return abs, nil
}

// Rel converts an absolute path under the root back to a slash-separated relative path.
func (s *OSStorage) Rel(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

func (s *OSStorage) ReadFile(path string) (string, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *OSStorage) WriteFile(path, content string) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(abs, []byte(content), mode)
}

func (s *OSStorage) Remove(path string) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	return os.Remove(abs)
}

func (s *OSStorage) Exists(path string) (bool, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, iofs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, fmt.Errorf("%s is a directory", path)
	}
	return true, nil
}

func (s *OSStorage) MkdirAll(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	abs, err := s.Resolve(dir)
	if err != nil {
		return err
	}
	return os.MkdirAll(abs, 0o755)
}

// ParentDir returns the slash-separated parent of a storage path, "" at the root.
func ParentDir(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return ""
	}
	return path[:i]
}
