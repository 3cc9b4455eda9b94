package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/sdejongh/globsync/pkg/ratelimit"
)

// Local is a filesystem backend on top of an afero.Fs
type Local struct {
	fs      afero.Fs
	limiter *ratelimit.Limiter
}

// NewLocal creates a backend for the given filesystem
func NewLocal(fsys afero.Fs) *Local {
	return &Local{fs: fsys}
}

// NewOsLocal creates a backend for the host filesystem
func NewOsLocal() *Local {
	return NewLocal(afero.NewOsFs())
}

// SetLimiter limits the bandwidth of subsequent copies. nil disables limiting.
func (l *Local) SetLimiter(limiter *ratelimit.Limiter) {
	l.limiter = limiter
}

// Fs returns the underlying filesystem
func (l *Local) Fs() afero.Fs {
	return l.fs
}

// Glob expands pattern against the filesystem.
// The literal directory prefix of the pattern is resolved first and the
// remainder is matched below it, so relative, absolute and parent-relative
// patterns all work. Returned paths keep the prefix as written.
func (l *Local) Glob(ctx context.Context, pattern string) ([]string, error) {
	pattern = filepath.ToSlash(pattern)
	base, rest := doublestar.SplitPattern(pattern)

	root, err := filepath.Abs(filepath.FromSlash(base))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pattern base %q: %w", base, err)
	}

	if _, err := l.fs.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to access pattern base %q: %w", base, err)
	}

	fsys := afero.NewIOFS(afero.NewBasePathFs(l.fs, root))

	var matches []string
	err = doublestar.GlobWalk(fsys, rest, func(p string, d fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if base == "." {
			matches = append(matches, p)
		} else {
			matches = append(matches, path.Join(base, p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expand pattern %q: %w", pattern, err)
	}

	return matches, nil
}

// List returns all entries below root recursively
func (l *Local) List(ctx context.Context, root string, filesOnly bool) ([]FileInfo, error) {
	var files []FileInfo

	err := afero.Walk(l.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		if filesOnly && info.IsDir() {
			return nil
		}

		files = append(files, FileInfo{
			Path:         filepath.ToSlash(p),
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			IsDir:        info.IsDir(),
			Permissions:  uint32(info.Mode().Perm()),
			RelativePath: filepath.ToSlash(relPath),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, p string) (*FileInfo, error) {
	info, err := l.fs.Stat(filepath.FromSlash(p))
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Path:        filepath.ToSlash(p),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		Permissions: uint32(info.Mode().Perm()),
	}, nil
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, p string) (bool, error) {
	exists, err := afero.Exists(l.fs, filepath.FromSlash(p))
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(ctx context.Context, p string) error {
	if err := l.fs.MkdirAll(filepath.FromSlash(p), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Copy copies a single file. The destination receives the source
// permissions and a fresh modification time.
func (l *Local) Copy(ctx context.Context, from, to string) (int64, error) {
	from = filepath.FromSlash(from)
	to = filepath.FromSlash(to)

	src, err := l.fs.Open(from)
	if err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to get source metadata: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("source is a directory: %s", from)
	}

	if err := l.fs.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := l.fs.OpenFile(to, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(dst, ratelimit.NewReader(ctx, src, l.limiter))
	if err != nil {
		dst.Close()
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	if err := dst.Close(); err != nil {
		return written, fmt.Errorf("failed to close file: %w", err)
	}

	if written != info.Size() {
		return written, fmt.Errorf("incomplete write: expected %d bytes, wrote %d", info.Size(), written)
	}

	// OpenFile only applies the mode on creation
	if err := l.fs.Chmod(to, info.Mode().Perm()); err != nil {
		return written, fmt.Errorf("failed to set permissions: %w", err)
	}

	return written, nil
}

// Delete removes a file or directory
func (l *Local) Delete(ctx context.Context, p string) error {
	p = filepath.FromSlash(p)
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("refusing to delete empty path")
	}

	if err := l.fs.RemoveAll(p); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	return nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
