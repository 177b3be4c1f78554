// Package filesystem implements the FileSaver port on the local disk.
package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/predictcr/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.FileSaver = (*Saver)(nil)

// DefaultDirPermissions is used when the download directory has to be created.
const DefaultDirPermissions = 0o755

// ErrInvalidFilename is returned when a suggested filename has no usable base name.
var ErrInvalidFilename = errors.New("invalid filename")

// Saver writes retrieved payloads into a single directory. Writes go through
// a temporary file that is renamed into place, so a reader never observes a
// partial file and a failed write leaves nothing behind.
type Saver struct {
	dir string
}

// NewSaver creates a Saver rooted at dir, creating the directory if needed.
func NewSaver(dir string) (*Saver, error) {
	if dir == "" {
		return nil, errors.New("download directory must not be empty")
	}
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create download directory %s: %w", dir, err)
	}
	return &Saver{dir: dir}, nil
}

// Dir returns the directory files are saved into.
func (s *Saver) Dir() string {
	return s.dir
}

// SaveBytes writes data to <dir>/<base of filename> and returns the full path.
// Directory components of filename are discarded. An existing file of the same
// name is replaced.
func (s *Saver) SaveBytes(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := sanitizeFilename(filename)
	if err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, name)
	if err := atomic.WriteFile(target, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}
	return target, nil
}

// sanitizeFilename reduces a server- or user-supplied name to a plain base name.
func sanitizeFilename(filename string) (string, error) {
	// Treat both separators as path separators regardless of platform.
	name := strings.ReplaceAll(filename, "\\", "/")
	name = filepath.Base(filepath.FromSlash(name))
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return name, nil
}
