// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DirUploader copies artifacts into a local directory tree. It serves
// deployments where the log destination is a mounted volume.
type DirUploader struct {
	// Root is the directory locations are resolved against.
	Root   string
	Logger *slog.Logger
}

// NewDirUploader creates an uploader rooted at root.
func NewDirUploader(root string, logger *slog.Logger) *DirUploader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirUploader{Root: root, Logger: logger}
}

// Path returns the file path a location maps to.
func (u *DirUploader) Path(location string) string {
	return filepath.Join(u.Root, filepath.FromSlash(ObjectKey(location)))
}

// Upload copies localPath to Path(location), creating parent directories.
func (u *DirUploader) Upload(ctx context.Context, localPath, location string) (err error) {
	if ObjectKey(location) == "" {
		return ErrEmptyLocation
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dst := u.Path(location)

	in, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", dst, cerr)
		}
	}()

	n, err := io.Copy(out, in)
	if err != nil {
		return fmt.Errorf("copying %s to %s: %w", localPath, dst, err)
	}
	if u.Logger != nil {
		u.Logger.Debug("stored artifact", "path", dst, "size", n)
	}
	return nil
}
