// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DefaultSourceDir is the image working directory copied to the volume.
	DefaultSourceDir = "/root"
	// DefaultDestDir is the shared volume mount point.
	DefaultDestDir = "/nf-workdir"
)

var (
	// ErrMaterialization is the sentinel error wrapped by MaterializationError.
	ErrMaterialization = errors.New("workspace materialization failed")
	// ErrInvalidPattern is returned for exclude patterns doublestar rejects.
	ErrInvalidPattern = errors.New("invalid exclude pattern")
	// ErrSameFile is returned when a copy would write a file onto itself,
	// which truncates it.
	ErrSameFile = errors.New("source and destination are the same")

	// defaultExcludes keeps tool installations, pipeline caches and previous
	// results out of the shared copy.
	defaultExcludes = []string{
		"latch",
		".latch",
		"nextflow",
		".nextflow",
		"work",
		"results",
		"miniconda",
		"anaconda3",
		"mambaforge",
	}
)

type (
	// Materializer copies SourceDir into DestDir.
	Materializer struct {
		// SourceDir is the tree to copy.
		SourceDir string
		// DestDir receives the merged copy. It is created if missing.
		DestDir string
		// Excludes are doublestar patterns matched against entry base names.
		Excludes []string
		// Logger receives skip records. Defaults to slog.Default().
		Logger *slog.Logger
	}

	// Stats summarizes one materialization.
	Stats struct {
		Files    int
		Dirs     int
		Bytes    int64
		Excluded int
		Skipped  int
	}

	// MaterializationError reports the path that could not be copied.
	MaterializationError struct {
		Path string
		Err  error
	}

	copier struct {
		ctx      context.Context
		excluded func(name string) bool
		destReal string
		logger   *slog.Logger
		stats    Stats
	}
)

// Error implements the error interface.
func (e *MaterializationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("workspace materialization failed: %v", e.Err)
	}
	return fmt.Sprintf("workspace materialization failed at %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrMaterialization and the underlying cause.
func (e *MaterializationError) Unwrap() []error { return []error{ErrMaterialization, e.Err} }

// DefaultExcludes returns a copy of the built-in exclude patterns.
func DefaultExcludes() []string {
	out := make([]string, len(defaultExcludes))
	copy(out, defaultExcludes)
	return out
}

// New returns a Materializer with the default excludes.
func New(sourceDir, destDir string) *Materializer {
	return &Materializer{
		SourceDir: sourceDir,
		DestDir:   destDir,
		Excludes:  DefaultExcludes(),
	}
}

// Validate checks the directories and exclude patterns.
func (m *Materializer) Validate() error {
	if m.SourceDir == "" {
		return &MaterializationError{Err: errors.New("source directory is empty")}
	}
	if m.DestDir == "" {
		return &MaterializationError{Err: errors.New("destination directory is empty")}
	}
	if filepath.Clean(m.SourceDir) == filepath.Clean(m.DestDir) {
		return &MaterializationError{Path: m.DestDir, Err: ErrSameFile}
	}
	for _, pat := range m.Excludes {
		if !doublestar.ValidatePattern(pat) {
			return &MaterializationError{Err: fmt.Errorf("%w: %q", ErrInvalidPattern, pat)}
		}
	}
	return nil
}

// Materialize copies the source tree into the destination and reports what
// was copied. Running it again over an existing destination merges into it.
func (m *Materializer) Materialize(ctx context.Context) (*Stats, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}

	src, err := filepath.Abs(m.SourceDir)
	if err != nil {
		return nil, &MaterializationError{Path: m.SourceDir, Err: err}
	}
	dst, err := filepath.Abs(m.DestDir)
	if err != nil {
		return nil, &MaterializationError{Path: m.DestDir, Err: err}
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil, &MaterializationError{Path: src, Err: err}
	}
	if !info.IsDir() {
		return nil, &MaterializationError{Path: src, Err: errors.New("source is not a directory")}
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return nil, &MaterializationError{Path: dst, Err: err}
	}
	destReal, err := filepath.EvalSymlinks(dst)
	if err != nil {
		return nil, &MaterializationError{Path: dst, Err: err}
	}
	srcReal, err := filepath.EvalSymlinks(src)
	if err != nil {
		return nil, &MaterializationError{Path: src, Err: err}
	}
	if srcReal == destReal {
		return nil, &MaterializationError{Path: dst, Err: ErrSameFile}
	}

	c := &copier{
		ctx:      ctx,
		excluded: m.Excluded,
		destReal: destReal,
		logger:   logger,
	}
	if err := c.copyDir(src, dst, nil); err != nil {
		return &c.stats, err
	}

	logger.Info("workspace materialized",
		"source", src, "dest", dst,
		"files", c.stats.Files, "dirs", c.stats.Dirs,
		"excluded", c.stats.Excluded, "skipped", c.stats.Skipped)
	return &c.stats, nil
}

// Excluded reports whether an entry with base name name is left out of the
// copy.
func (m *Materializer) Excluded(name string) bool {
	for _, pat := range m.Excludes {
		if matched, err := doublestar.Match(pat, name); err == nil && matched {
			return true
		}
	}
	return false
}

// copyDir copies the directory src into dst. ancestors holds the resolved
// paths of the directories above src and detects symlink loops.
func (c *copier) copyDir(src, dst string, ancestors []string) error {
	if err := c.ctx.Err(); err != nil {
		return &MaterializationError{Path: src, Err: err}
	}

	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return &MaterializationError{Path: src, Err: err}
	}
	if slices.Contains(ancestors, resolved) {
		c.logger.Warn("skipping symlink loop", "path", src, "target", resolved)
		c.stats.Skipped++
		return nil
	}
	if len(ancestors) > 0 && isWithin(resolved, c.destReal) {
		c.logger.Debug("skipping destination inside source", "path", src)
		c.stats.Skipped++
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return &MaterializationError{Path: src, Err: err}
	}
	if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
		return &MaterializationError{Path: dst, Err: err}
	}
	c.stats.Dirs++

	entries, err := os.ReadDir(src)
	if err != nil {
		return &MaterializationError{Path: src, Err: err}
	}
	ancestors = append(ancestors, resolved)

	for _, entry := range entries {
		name := entry.Name()
		if c.excluded(name) {
			c.stats.Excluded++
			continue
		}
		srcPath := filepath.Join(src, name)
		dstPath := filepath.Join(dst, name)

		target, err := os.Stat(srcPath)
		if err != nil {
			if entry.Type()&fs.ModeSymlink != 0 && errors.Is(err, fs.ErrNotExist) {
				c.logger.Warn("skipping dangling symlink", "path", srcPath)
				c.stats.Skipped++
				continue
			}
			if entry.Type()&fs.ModeSymlink != 0 && isLoopError(err) {
				c.logger.Warn("skipping symlink loop", "path", srcPath)
				c.stats.Skipped++
				continue
			}
			return &MaterializationError{Path: srcPath, Err: err}
		}

		switch {
		case target.IsDir():
			if err := c.copyDir(srcPath, dstPath, ancestors); err != nil {
				return err
			}
		case target.Mode().IsRegular():
			if err := c.copyFile(srcPath, dstPath, target); err != nil {
				return err
			}
		default:
			c.logger.Debug("skipping special file", "path", srcPath, "mode", target.Mode().String())
			c.stats.Skipped++
		}
	}
	return nil
}

func (c *copier) copyFile(src, dst string, info fs.FileInfo) (err error) {
	if err := c.ctx.Err(); err != nil {
		return &MaterializationError{Path: src, Err: err}
	}

	in, err := os.Open(src)
	if err != nil {
		return &MaterializationError{Path: src, Err: err}
	}
	defer func() { _ = in.Close() }()

	// A symlink at the destination would redirect the write; replace it.
	if fi, lerr := os.Lstat(dst); lerr == nil && fi.Mode()&fs.ModeSymlink != 0 {
		if rerr := os.Remove(dst); rerr != nil {
			return &MaterializationError{Path: dst, Err: rerr}
		}
	} else if lerr == nil && os.SameFile(info, fi) {
		// Hard links and bind mounts can make dst the source inode.
		return &MaterializationError{Path: dst, Err: ErrSameFile}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return &MaterializationError{Path: dst, Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = &MaterializationError{Path: dst, Err: cerr}
		}
	}()

	n, err := io.Copy(out, in)
	if err != nil {
		return &MaterializationError{Path: dst, Err: err}
	}
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		return &MaterializationError{Path: dst, Err: err}
	}
	// Preserve modification times so re-runs keep Nextflow's resume cache valid.
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return &MaterializationError{Path: dst, Err: err}
	}

	c.stats.Files++
	c.stats.Bytes += n
	return nil
}

func isLoopError(err error) bool {
	return errors.Is(err, syscall.ELOOP)
}

func isWithin(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
