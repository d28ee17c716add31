package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbcopy/internal/cli/output"
	"github.com/marmos91/smbcopy/internal/cli/progress"
	"github.com/marmos91/smbcopy/internal/cli/prompt"
	"github.com/marmos91/smbcopy/internal/logger"
	"github.com/marmos91/smbcopy/pkg/config"
	"github.com/marmos91/smbcopy/pkg/copier"
	"github.com/marmos91/smbcopy/pkg/destination"
	"github.com/marmos91/smbcopy/pkg/scanner"
)

// InvalidSourceError is returned when the source argument is not a directory.
type InvalidSourceError struct {
	Path string
}

func (e *InvalidSourceError) Error() string {
	return e.Path + " is not a valid directory"
}

func run(cmd *cobra.Command, args []string, f *flags) error {
	src, dest := args[0], args[1]

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if err := initLogger(cfg); err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	if err := checkSource(src); err != nil {
		return err
	}
	if destination.IsSMB(dest) {
		if _, err := destination.ParseSMB(dest); err != nil {
			return err
		}
	}
	rule, err := cfg.Sanitize.Rule()
	if err != nil {
		return err
	}

	lc := logger.NewLogContext(src, dest)
	ctx := logger.WithContext(cmd.Context(), lc)
	logger.InfoCtx(ctx, "run started", logger.KeySource, src, logger.KeyDest, dest)

	out := cmd.OutOrStdout()
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	printer := output.NewPrinter(out, format, output.ColorEnabled(out))

	sc := scanner.New(rule, scanner.Confirm(confirmer(cfg, cmd.InOrStdin(), out)),
		scanner.WithOutput(out),
		scanner.WithNotifier(printer.Warning),
		scanner.WithPruneSkipped(cfg.Copy.PruneSkipped),
	)
	p, err := sc.Scan(ctx, src)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	spin := progress.New(cmd.ErrOrStderr(), logger.CurrentLevel() >= logger.LevelWarn)
	cp := copier.New(
		copier.WithOutput(out),
		copier.WithResolver(destination.GVFS{RuntimeDir: cfg.SMB.RuntimeDir}),
		copier.WithFileCopier(copier.NewOSFileCopier(cfg.Copy.BufferSize.Int())),
		copier.WithPruneSkipped(cfg.Copy.PruneSkipped),
		copier.WithFollowRenamedDirs(cfg.Copy.FollowRenamedDirs),
		copier.WithObserver(spin.Observer("copying")),
	)

	stats, err := cp.Copy(ctx, src, dest, p)
	spin.Stop()
	if err != nil {
		logger.ErrorCtx(ctx, "copy failed", logger.Err(err))
		return err
	}

	logger.InfoCtx(ctx, "run finished", logger.KeyDurationMs, lc.Elapsed().Milliseconds())
	if cfg.Output.Summary {
		return printSummary(printer, newSummary(lc, p, stats))
	}
	return nil
}

// loadConfig loads the config file and environment, with explicitly set
// flags taking precedence.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	fl := cmd.Flags()
	bindings := []config.Binding{
		{Key: "prompt.assume_yes", Flag: fl.Lookup("yes")},
		{Key: "copy.prune_skipped", Flag: fl.Lookup("prune-skipped")},
		{Key: "copy.follow_renamed_dirs", Flag: fl.Lookup("follow-renamed-dirs")},
		{Key: "output.summary", Flag: fl.Lookup("summary")},
		{Key: "output.format", Flag: fl.Lookup("output")},
		{Key: "logging.level", Flag: fl.Lookup("log-level")},
	}
	cfg, err := config.Load(f.cfgFile, bindings...)
	if err != nil {
		return nil, err
	}
	if f.verbose {
		cfg.Logging.Level = "DEBUG"
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) error {
	return logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

func checkSource(src string) error {
	info, err := os.Stat(src)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Debug("stat source failed", logger.KeySource, src, logger.Err(err))
		}
		return &InvalidSourceError{Path: src}
	}
	if !info.IsDir() {
		return &InvalidSourceError{Path: src}
	}
	return nil
}

// confirmer picks how renames are approved: everything when assume_yes is
// set, otherwise by asking on in.
func confirmer(cfg *config.Config, in io.Reader, out io.Writer) prompt.Func {
	if cfg.Prompt.AssumeYes {
		return prompt.AssumeYes(out)
	}
	return prompt.ForInput(in, out)
}
