// Package scanner implements the first pass of a copy: it walks the source
// tree, finds names the destination cannot hold, and asks the operator what
// to do with each one.
package scanner

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/marmos91/smbcopy/internal/logger"
	"github.com/marmos91/smbcopy/pkg/plan"
	"github.com/marmos91/smbcopy/pkg/sanitize"
)

// Confirm decides whether a proposed rename is approved.
type Confirm func(c plan.Change) (bool, error)

// Scanner builds a plan.Plan for a source tree.
type Scanner struct {
	rule    sanitize.Rule
	confirm Confirm
	out     io.Writer
	prune   bool
	notify  func(msg string)
	fsys    func(root string) fs.FS
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithOutput sets where the header and skip notices are printed.
// Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(s *Scanner) { s.out = w }
}

// WithNotifier routes skip notices to fn instead of printing them as plain
// lines on the output.
func WithNotifier(fn func(msg string)) Option {
	return func(s *Scanner) { s.notify = fn }
}

// WithPruneSkipped makes a declined directory hide its whole subtree: its
// descendants are neither prompted for nor recorded.
func WithPruneSkipped(prune bool) Option {
	return func(s *Scanner) { s.prune = prune }
}

// WithFS walks the fs.FS returned by open instead of the OS filesystem.
func WithFS(open func(root string) fs.FS) Option {
	return func(s *Scanner) { s.fsys = open }
}

// New creates a Scanner that sanitizes with rule and asks confirm about
// every name that would change.
func New(rule sanitize.Rule, confirm Confirm, opts ...Option) *Scanner {
	s := &Scanner{
		rule:    rule,
		confirm: confirm,
		out:     os.Stdout,
		fsys:    os.DirFS,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks root and returns the operator's decisions.
//
// Only names that change under the rule are recorded. A confirm error stops
// the scan and is returned as is, so callers can test it with errors.Is.
func (s *Scanner) Scan(ctx context.Context, root string) (*plan.Plan, error) {
	ctx = logger.EnterPhase(ctx, logger.PhaseScan)
	if _, err := fmt.Fprintf(s.out, "--- Scanning %s ---\n\n", root); err != nil {
		return nil, err
	}

	p := plan.New()
	// approved new paths, to report two renames landing on one name
	targets := make(map[string]string)

	err := fs.WalkDir(s.fsys(root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scan %s: %w", filepath.Join(root, filepath.FromSlash(path)), err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == "." {
			return nil
		}

		name := d.Name()
		if !s.rule.NeedsChange(name) {
			return nil
		}

		rel := filepath.FromSlash(path)
		c := plan.Change{
			Path:    rel,
			NewPath: filepath.Join(filepath.Dir(rel), s.rule.Apply(name)),
			Kind:    plan.KindFile,
		}
		if d.IsDir() {
			c.Kind = plan.KindDir
		}

		ok, err := s.confirm(c)
		if err != nil {
			return err
		}
		if !ok {
			p.Decline(c)
			logger.InfoCtx(ctx, "rename declined", logger.KeyPath, c.Path, logger.KeyKind, c.Kind.String())
			if err := s.notice(fmt.Sprintf("/%s will be skipped", filepath.ToSlash(rel))); err != nil {
				return err
			}
			if s.prune && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		p.Approve(c)
		logger.DebugCtx(ctx, "rename approved", logger.KeyPath, c.Path, logger.KeyNewPath, c.NewPath)
		s.checkCollision(ctx, root, c, targets)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "scan complete",
		logger.KeySource, root,
		logger.KeyRenames, len(p.Renames),
		logger.KeySkipped, len(p.Skips))
	return p, nil
}

// checkCollision warns when c's new name is already taken, either by an
// earlier approved rename or by an existing sibling. The rename is kept.
func (s *Scanner) checkCollision(ctx context.Context, root string, c plan.Change, targets map[string]string) {
	if prev, ok := targets[c.NewPath]; ok {
		logger.WarnCtx(ctx, "two renames share a destination name",
			logger.KeyPath, c.Path, "other", prev, logger.KeyNewPath, c.NewPath)
		return
	}
	targets[c.NewPath] = c.Path

	if _, err := fs.Stat(s.fsys(root), filepath.ToSlash(c.NewPath)); err == nil {
		logger.WarnCtx(ctx, "renamed entry collides with an existing entry",
			logger.KeyPath, c.Path, logger.KeyNewPath, c.NewPath)
	}
}

func (s *Scanner) notice(msg string) error {
	if s.notify != nil {
		s.notify(msg)
		return nil
	}
	_, err := fmt.Fprintln(s.out, msg)
	return err
}
