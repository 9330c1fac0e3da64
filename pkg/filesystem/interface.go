package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSystemInterface defines the contract for file system operations
type FileSystemInterface interface {
	// File operations
	Stat(name string) (os.FileInfo, error)
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error

	// Directory operations
	MkdirAll(path string, perm os.FileMode) error
	ReadDir(dirname string) ([]os.DirEntry, error)

	// File content operations
	WriteFile(filename string, data []byte, perm os.FileMode) error
	ReadFile(filename string) ([]byte, error)

	// Utility operations
	Exists(path string) bool
	IsDir(path string) bool
	UserHomeDir() (string, error)
}

// StandardFileSystem implements FileSystemInterface using standard library
type StandardFileSystem struct{}

// NewStandardFileSystem creates a new StandardFileSystem
func NewStandardFileSystem() *StandardFileSystem {
	return &StandardFileSystem{}
}

// Stat returns file info
func (fs *StandardFileSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// Remove removes a file
func (fs *StandardFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// RemoveAll removes a path and any children it contains
func (fs *StandardFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Rename renames a file or directory
func (fs *StandardFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// MkdirAll creates a directory path
func (fs *StandardFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// ReadDir reads directory contents
func (fs *StandardFileSystem) ReadDir(dirname string) ([]os.DirEntry, error) {
	return os.ReadDir(dirname)
}

// WriteFile writes data to a file
func (fs *StandardFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

// ReadFile reads file contents
func (fs *StandardFileSystem) ReadFile(filename string) ([]byte, error) {
	return os.ReadFile(filename)
}

// Exists checks if a path exists
func (fs *StandardFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir checks if a path is a directory
func (fs *StandardFileSystem) IsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// UserHomeDir returns user home directory
func (fs *StandardFileSystem) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// WriteFileAtomic writes data next to filename and renames it into place, so
// readers observe either the old or the new content.
func WriteFileAtomic(fs FileSystemInterface, filename string, data []byte, perm os.FileMode) error {
	tmp := filepath.Join(filepath.Dir(filename), "."+filepath.Base(filename)+".partial")
	if err := fs.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := fs.Rename(tmp, filename); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return nil
}

// CountFiles returns the number of regular files below root.
func CountFiles(fs FileSystemInterface, root string) (int, error) {
	entries, err := fs.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", root, err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			n, err := CountFiles(fs, filepath.Join(root, entry.Name()))
			if err != nil {
				return 0, err
			}
			count += n
			continue
		}
		count++
	}
	return count, nil
}
