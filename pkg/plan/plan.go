// Package plan holds the outcome of the scan phase: which entries get a new
// name and which are left out of the copy.
//
// A Plan is built once, entry by entry, while the source tree is scanned and
// is only read afterwards. Every relative path is in exactly one of three
// states: unchanged (absent from both sets), renamed, or skipped.
package plan

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the type of a filesystem entry.
type Kind int

const (
	KindFile Kind = iota
	KindDir
)

// String returns "file" or "directory".
func (k Kind) String() string {
	if k == KindDir {
		return "directory"
	}
	return "file"
}

// Change is a proposed rename of one entry. Path and NewPath are relative to
// the source root and differ only in their last component.
type Change struct {
	Path    string
	NewPath string
	Kind    Kind
}

// String renders the change the way it is shown to the operator.
func (c Change) String() string {
	return fmt.Sprintf("Rename /%s to /%s", filepath.ToSlash(c.Path), filepath.ToSlash(c.NewPath))
}

// RenameMap maps an original relative path to its sanitized relative path.
type RenameMap map[string]string

// SkipSet holds the original relative paths the operator declined to rename.
type SkipSet map[string]struct{}

// Add records path in the set.
func (s SkipSet) Add(path string) {
	s[path] = struct{}{}
}

// Contains reports whether path is in the set.
func (s SkipSet) Contains(path string) bool {
	_, ok := s[path]
	return ok
}

// Sorted returns the skipped paths in lexical order.
func (s SkipSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Plan is the result of a scan.
type Plan struct {
	Renames RenameMap
	Skips   SkipSet
}

// New returns an empty plan.
func New() *Plan {
	return &Plan{
		Renames: make(RenameMap),
		Skips:   make(SkipSet),
	}
}

// Approve records an accepted rename.
func (p *Plan) Approve(c Change) {
	delete(p.Skips, c.Path)
	p.Renames[c.Path] = c.NewPath
}

// Decline records a refused rename; the entry will not be copied.
func (p *Plan) Decline(c Change) {
	delete(p.Renames, c.Path)
	p.Skips.Add(c.Path)
}

// Skipped reports whether rel itself was declined.
func (p *Plan) Skipped(rel string) bool {
	return p.Skips.Contains(rel)
}

// UnderSkipped reports whether rel or any of its ancestors was declined.
func (p *Plan) UnderSkipped(rel string) bool {
	if len(p.Skips) == 0 {
		return false
	}
	for prefix := range prefixes(rel) {
		if p.Skips.Contains(prefix) {
			return true
		}
	}
	return false
}

// Resolve returns the destination relative path for rel: its entry in the
// rename map, or rel itself. Ancestors are not consulted, so an entry below
// a renamed directory keeps the directory's original name.
func (p *Plan) Resolve(rel string) string {
	if renamed, ok := p.Renames[rel]; ok {
		return renamed
	}
	return rel
}

// ResolveNested is like Resolve but looks up every ancestor prefix too, so
// an entry below a renamed directory lands inside the renamed directory.
func (p *Plan) ResolveNested(rel string) string {
	if len(p.Renames) == 0 {
		return rel
	}
	sep := string(filepath.Separator)
	parts := strings.Split(rel, sep)
	out := make([]string, len(parts))
	i := 0
	for prefix := range prefixes(rel) {
		if renamed, ok := p.Renames[prefix]; ok {
			out[i] = filepath.Base(renamed)
		} else {
			out[i] = parts[i]
		}
		i++
	}
	return strings.Join(out, sep)
}

// Len returns the number of recorded decisions.
func (p *Plan) Len() int {
	return len(p.Renames) + len(p.Skips)
}

// prefixes yields "a", "a/b", "a/b/c" for "a/b/c".
func prefixes(rel string) func(yield func(string) bool) {
	return func(yield func(string) bool) {
		sep := filepath.Separator
		for i := 0; i < len(rel); i++ {
			if rel[i] == byte(sep) {
				if !yield(rel[:i]) {
					return
				}
			}
		}
		yield(rel)
	}
}
