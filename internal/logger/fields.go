package logger

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
)

// Standard field keys. Use these instead of ad-hoc strings so text and JSON
// output stay greppable across the scan and copy phases.
const (
	// Run
	KeyRunID      = "run_id"
	KeyPhase      = "phase"
	KeyDurationMs = "duration_ms"

	// Paths
	KeySource  = "source"   // source root as given
	KeyDest    = "dest"     // destination root as given
	KeyMount   = "mount"    // resolved local destination
	KeyPath    = "path"     // entry path relative to the source root
	KeyNewPath = "new_path" // sanitized relative path
	KeyTarget  = "target"   // absolute destination path of an entry

	// Entries
	KeyKind = "kind"
	KeySize = "size"
	KeyMode = "mode"

	// Totals
	KeyFiles   = "files"
	KeyDirs    = "dirs"
	KeyBytes   = "bytes"
	KeySkipped = "skipped"
	KeyIgnored = "ignored"
	KeyRenames = "renames"

	KeyError = "error"
)

// Err returns an error attribute, or an empty attribute for nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Path returns a relative-path attribute.
func Path(rel string) slog.Attr {
	return slog.String(KeyPath, rel)
}

// Size returns a size attribute rendered for humans ("1.5 MiB").
func Size(n int64) slog.Attr {
	if n < 0 {
		n = 0
	}
	return slog.String(KeySize, humanize.IBytes(uint64(n)))
}

// DurationMs returns the time elapsed since start, in milliseconds.
func DurationMs(start time.Time) slog.Attr {
	return slog.Float64(KeyDurationMs, float64(time.Since(start).Microseconds())/1000.0)
}
