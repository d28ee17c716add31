// Package commands implements the smbcopy command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/marmos91/smbcopy/internal/cli/output"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Usage is printed when the positional arguments are wrong.
const Usage = "Usage: smbcopy <source_dir> <destination>"

// ErrUsage is returned when the command is invoked with the wrong arguments.
var ErrUsage = errors.New("wrong number of arguments")

// flags holds the command line values of one invocation.
type flags struct {
	cfgFile  string
	yes      bool
	prune    bool
	follow   bool
	summary  bool
	output   string
	logLevel string
	verbose  bool
}

// NewRootCmd builds the smbcopy command.
func NewRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "smbcopy [flags] <source_dir> <destination>",
		Short: "Copy a directory tree to a local path or a GVFS-mounted SMB share",
		Long: `smbcopy copies a directory tree to a destination, renaming entries whose
names contain characters the destination cannot hold (" ' and : by default).

Every rename is confirmed first: the whole source tree is scanned and each
proposed rename asked about before anything is copied. Declined entries are
skipped.

The destination is either a local path or an smb://host/share[/path]
location, which is resolved to its GVFS mount under /run/user/<uid>/gvfs.

Examples:
  # Copy to a mounted share
  smbcopy ~/Music smb://nas/media/music

  # Approve every rename and print totals
  smbcopy --yes --summary ./photos /mnt/backup

  # Answer prompts from a file
  smbcopy ./docs /mnt/usb < answers.txt

Environment Variables:
  Every configuration key can be set as SMBCOPY_<SECTION>_<KEY>,
  e.g. SMBCOPY_LOGGING_LEVEL=DEBUG or SMBCOPY_COPY_BUFFER_SIZE=4MiB.`,
		Version:       versionString(),
		Args:          exactTwoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/smbcopy/config.yaml)")
	fl.BoolVarP(&f.yes, "yes", "y", false, "approve every rename without prompting")
	fl.BoolVar(&f.prune, "prune-skipped", false, "also skip everything below a declined directory")
	fl.BoolVar(&f.follow, "follow-renamed-dirs", false, "copy entries below a renamed directory into the renamed directory")
	fl.BoolVar(&f.summary, "summary", false, "print totals after the copy")
	fl.StringVarP(&f.output, "output", "o", "table", "summary format (table|json|yaml)")
	fl.StringVar(&f.logLevel, "log-level", "WARN", "log level (DEBUG|INFO|WARN|ERROR)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "shorthand for --log-level DEBUG")

	cmd.SetVersionTemplate("smbcopy {{.Version}}\n")
	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}

func exactTwoArgs(_ *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: got %d, want 2", ErrUsage, len(args))
	}
	return nil
}

// Run executes smbcopy with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for a nil slice
		args = []string{}
	}
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		PrintError(stderr, err)
		return 1
	}
	return 0
}

// PrintError reports err the way the command line shows failures: the
// usage line for argument errors, "Error: ..." for everything else.
func PrintError(w io.Writer, err error) {
	if errors.Is(err, ErrUsage) {
		_, _ = fmt.Fprintln(w, Usage)
		return
	}
	output.NewPrinter(w, output.FormatTable, output.ColorEnabled(w)).Error("Error: " + err.Error())
}
