package storage

import (
	"context"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	Permissions  uint32
	RelativePath string
}

// Backend defines the filesystem operations the sync engine depends on.
// All paths are slash-separated; relative paths resolve against the
// process working directory.
type Backend interface {
	// Glob expands a glob pattern and returns every matching path, files and
	// directories, dotfiles included
	Glob(ctx context.Context, pattern string) ([]string, error)

	// List returns every entry below root recursively, root excluded.
	// RelativePath of each entry is relative to root.
	List(ctx context.Context, root string, filesOnly bool) ([]FileInfo, error)

	// Stat returns file metadata. A missing path yields an error matching
	// fs.ErrNotExist.
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Copy copies the file at from to to, creating parent directories and
	// overwriting any existing file. It returns the number of bytes written.
	Copy(ctx context.Context, from, to string) (int64, error)

	// Delete removes a file or directory recursively. The path is taken
	// literally, never as a pattern.
	Delete(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}
