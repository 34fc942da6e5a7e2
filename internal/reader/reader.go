// Package reader serves file contents for the read endpoint.
package reader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ppiankov/taskgate/internal/sandbox"
)

var (
	// ErrNotFound is returned when the path does not name a readable file.
	ErrNotFound = errors.New("file not found")
	// ErrOutsideRoot is returned for confined reads that leave the data root.
	ErrOutsideRoot = errors.New("path is outside the data root")
)

// Reader returns file contents. Relative paths resolve against the root.
type Reader struct {
	root         string
	unrestricted bool
}

// New creates a Reader. When unrestricted is false, reads are confined to
// root, symlinks included.
func New(root string, unrestricted bool) *Reader {
	return &Reader{root: filepath.Clean(root), unrestricted: unrestricted}
}

// Read returns the contents of path as UTF-8 text.
func (r *Reader) Read(path string) (string, error) {
	if path == "" {
		return "", ErrNotFound
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	path = filepath.Clean(path)

	if !r.unrestricted {
		if !sandbox.Within(r.root, path) {
			return "", ErrOutsideRoot
		}
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return "", notFound(err)
		}
		rootReal, err := filepath.EvalSymlinks(r.root)
		if err != nil {
			rootReal = r.root
		}
		if !sandbox.Within(rootReal, resolved) {
			return "", ErrOutsideRoot
		}
		path = resolved
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", notFound(err)
	}
	if info.IsDir() {
		return "", ErrNotFound
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", notFound(err)
	}
	return string(data), nil
}

// notFound maps a missing file to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return fmt.Errorf("read file: %w", err)
}
