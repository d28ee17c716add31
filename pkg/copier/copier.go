// Package copier implements the second pass of a copy: it walks the source
// tree again and writes every entry the plan keeps to the destination.
package copier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/marmos91/smbcopy/internal/logger"
	"github.com/marmos91/smbcopy/pkg/destination"
	"github.com/marmos91/smbcopy/pkg/plan"
)

// Stats counts what a copy did.
type Stats struct {
	Files   int   `json:"files" yaml:"files"`
	Dirs    int   `json:"dirs" yaml:"dirs"`
	Bytes   int64 `json:"bytes" yaml:"bytes"`
	Skipped int   `json:"skipped" yaml:"skipped"`
	Ignored int   `json:"ignored" yaml:"ignored"` // dangling links, devices, sockets, fifos
}

// Copier copies a source tree according to a plan.Plan.
type Copier struct {
	out      io.Writer
	resolver destination.Resolver
	files    FileCopier
	prune    bool
	nested   bool
	observe  func(rel string)
}

// Option configures a Copier.
type Option func(*Copier)

// WithOutput sets where the header is printed. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Copier) { c.out = w }
}

// WithResolver sets how the destination argument becomes a local path.
// Defaults to destination.NewGVFS().
func WithResolver(r destination.Resolver) Option {
	return func(c *Copier) { c.resolver = r }
}

// WithFileCopier replaces the file copy primitive.
func WithFileCopier(fc FileCopier) Option {
	return func(c *Copier) { c.files = fc }
}

// WithPruneSkipped skips whole subtrees of declined directories instead of
// only the declined entry itself.
func WithPruneSkipped(prune bool) Option {
	return func(c *Copier) { c.prune = prune }
}

// WithFollowRenamedDirs places entries below a renamed directory inside the
// renamed directory. Without it only an entry's own rename applies and its
// parents keep their original names.
func WithFollowRenamedDirs(follow bool) Option {
	return func(c *Copier) { c.nested = follow }
}

// WithObserver registers fn to be called with the relative path of every
// entry before it is copied.
func WithObserver(fn func(rel string)) Option {
	return func(c *Copier) { c.observe = fn }
}

// New creates a Copier.
func New(opts ...Option) *Copier {
	c := &Copier{
		out:      os.Stdout,
		resolver: destination.NewGVFS(),
		files:    NewOSFileCopier(DefaultBufferSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy copies srcRoot to dest following p.
//
// dest is resolved once before the walk. Declined entries are left out; by
// default only the declined entry itself, so children of a declined
// directory are still copied under its original name. The first filesystem
// error ends the copy and is returned; whatever was written stays.
func (c *Copier) Copy(ctx context.Context, srcRoot, dest string, p *plan.Plan) (Stats, error) {
	ctx = logger.EnterPhase(ctx, logger.PhaseCopy)
	var stats Stats

	if _, err := fmt.Fprintf(c.out, "\n--- Copying %s to %s ---\n\n", srcRoot, dest); err != nil {
		return stats, err
	}

	dstRoot, err := c.resolve(ctx, dest)
	if err != nil {
		return stats, err
	}

	// WalkDir does not descend into a symlinked root
	root, err := filepath.EvalSymlinks(srcRoot)
	if err != nil {
		return stats, fmt.Errorf("copy: %w", err)
	}

	start := time.Now()
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("copy: walk %s: %w", path, err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("copy: %w", err)
		}
		if rel == "." {
			return nil
		}

		if p.Skipped(rel) {
			stats.Skipped++
			logger.DebugCtx(ctx, "skipping declined entry", logger.KeyPath, rel)
			if c.prune && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if c.observe != nil {
			c.observe(rel)
		}
		target := filepath.Join(dstRoot, c.target(p, rel))
		return c.copyEntry(ctx, path, target, rel, d, &stats)
	})
	if err != nil {
		return stats, err
	}

	logger.InfoCtx(ctx, "copy complete",
		logger.KeyDest, dest,
		logger.KeyFiles, stats.Files,
		logger.KeyDirs, stats.Dirs,
		logger.KeyBytes, stats.Bytes,
		logger.KeySkipped, stats.Skipped,
		logger.KeyIgnored, stats.Ignored,
		logger.DurationMs(start))
	return stats, nil
}

func (c *Copier) target(p *plan.Plan, rel string) string {
	if c.nested {
		return p.ResolveNested(rel)
	}
	return p.Resolve(rel)
}

// resolve maps dest to a local path, warning when an SMB share does not
// look mounted. The copy goes ahead either way.
func (c *Copier) resolve(ctx context.Context, dest string) (string, error) {
	dstRoot, err := c.resolver.Resolve(dest)
	if err != nil {
		return "", err
	}
	if mc, ok := c.resolver.(destination.MountChecker); ok {
		if err := mc.CheckMounted(dest); err != nil {
			if !errors.Is(err, destination.ErrNotMounted) {
				return "", err
			}
			logger.WarnCtx(ctx, "destination share is not mounted", logger.KeyMount, dstRoot, logger.Err(err))
		}
	}
	logger.DebugCtx(ctx, "destination resolved", logger.KeyDest, dest, logger.KeyMount, dstRoot)
	return dstRoot, nil
}

// copyEntry writes one entry. Symlinks are followed: a link to a file is
// copied as a file, a link to a directory becomes a directory, and a
// dangling link is ignored, like anything that is neither file nor directory.
func (c *Copier) copyEntry(ctx context.Context, src, target, rel string, d fs.DirEntry, stats *Stats) error {
	info, err := os.Stat(src)
	if err != nil {
		if d.Type()&fs.ModeSymlink != 0 && errors.Is(err, fs.ErrNotExist) {
			stats.Ignored++
			logger.DebugCtx(ctx, "ignoring dangling symlink", logger.KeyPath, rel)
			return nil
		}
		return fmt.Errorf("copy: stat %s: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("copy: create parent of %s: %w", target, err)
	}

	switch {
	case info.Mode().IsRegular():
		if err := c.files.CopyFile(src, target); err != nil {
			return fmt.Errorf("copy: %s: %w", rel, err)
		}
		stats.Files++
		stats.Bytes += info.Size()
		logger.DebugCtx(ctx, "copied file", logger.KeyPath, rel, logger.KeyTarget, target, logger.Size(info.Size()))
	case info.IsDir():
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("copy: create %s: %w", target, err)
		}
		stats.Dirs++
		logger.DebugCtx(ctx, "created directory", logger.KeyPath, rel, logger.KeyTarget, target)
	default:
		stats.Ignored++
		logger.DebugCtx(ctx, "ignoring special file", logger.KeyPath, rel, logger.KeyMode, info.Mode().String())
	}
	return nil
}
