package commands

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/marmos91/smbcopy/internal/cli/output"
	"github.com/marmos91/smbcopy/internal/cli/timeutil"
	"github.com/marmos91/smbcopy/internal/logger"
	"github.com/marmos91/smbcopy/pkg/copier"
	"github.com/marmos91/smbcopy/pkg/plan"
)

// Rename is one applied rename in a Summary.
type Rename struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Summary describes a finished run.
type Summary struct {
	RunID       string       `json:"run_id" yaml:"run_id"`
	Source      string       `json:"source" yaml:"source"`
	Destination string       `json:"destination" yaml:"destination"`
	StartedAt   time.Time    `json:"started_at" yaml:"started_at"`
	DurationMs  int64        `json:"duration_ms" yaml:"duration_ms"`
	Stats       copier.Stats `json:"stats" yaml:"stats"`
	Renamed     []Rename     `json:"renamed" yaml:"renamed"`
	Declined    []string     `json:"declined" yaml:"declined"`
}

func newSummary(lc *logger.LogContext, p *plan.Plan, stats copier.Stats) Summary {
	s := Summary{
		RunID:       lc.RunID,
		Source:      lc.Source,
		Destination: lc.Destination,
		StartedAt:   lc.StartTime,
		DurationMs:  lc.Elapsed().Milliseconds(),
		Stats:       stats,
		Renamed:     make([]Rename, 0, len(p.Renames)),
		Declined:    make([]string, 0, len(p.Skips)),
	}
	for from, to := range p.Renames {
		s.Renamed = append(s.Renamed, Rename{From: filepath.ToSlash(from), To: filepath.ToSlash(to)})
	}
	sort.Slice(s.Renamed, func(i, j int) bool { return s.Renamed[i].From < s.Renamed[j].From })
	for _, rel := range p.Skips.Sorted() {
		s.Declined = append(s.Declined, filepath.ToSlash(rel))
	}
	return s
}

// Headers implements output.TableRenderer.
func (s Summary) Headers() []string {
	return []string{"Item", "Value"}
}

// Rows implements output.TableRenderer.
func (s Summary) Rows() [][]string {
	return [][]string{
		{"Files", strconv.Itoa(s.Stats.Files)},
		{"Directories", strconv.Itoa(s.Stats.Dirs)},
		{"Copied", humanize.IBytes(uint64(s.Stats.Bytes))},
		{"Renamed", strconv.Itoa(len(s.Renamed))},
		{"Declined", strconv.Itoa(len(s.Declined))},
		{"Skipped entries", strconv.Itoa(s.Stats.Skipped)},
		{"Ignored entries", strconv.Itoa(s.Stats.Ignored)},
		{"Started", timeutil.FormatTime(s.StartedAt)},
		{"Duration", timeutil.FormatDuration(time.Duration(s.DurationMs) * time.Millisecond)},
	}
}

// printSummary writes s in the printer's format. Table output gets a status
// line, the totals and, when anything was renamed, a FROM/TO table.
func printSummary(p *output.Printer, s Summary) error {
	if p.Format() != output.FormatTable {
		return p.Print(s)
	}

	w := p.Writer()
	_, _ = fmt.Fprintln(w)
	p.Success(fmt.Sprintf("Copied %d files and %d directories to %s", s.Stats.Files, s.Stats.Dirs, s.Destination))
	_, _ = fmt.Fprintln(w)
	if err := p.Print(s); err != nil {
		return err
	}
	if len(s.Renamed) == 0 {
		return nil
	}

	renames := output.NewTableData("From", "To")
	for _, r := range s.Renamed {
		renames.AddRow("/"+r.From, "/"+r.To)
	}
	_, _ = fmt.Fprintln(w)
	return output.PrintTable(w, renames)
}
