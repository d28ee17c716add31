// Package sanitize rewrites single path components that contain characters
// the destination filesystem refuses.
//
// SMB shares (and the Windows filesystems behind them) reject a handful of
// characters that are perfectly legal on Linux. A Rule replaces each of those
// characters with a fixed replacement so the name can be created remotely.
// Rules only ever look at one component (a leaf name); callers are
// responsible for splitting paths.
package sanitize

import (
	"fmt"
	"strings"
)

// Defaults used when no configuration overrides them.
const (
	// DefaultInvalid lists the characters replaced by the default rule.
	DefaultInvalid = `"':`

	// DefaultReplacement is substituted for every invalid character.
	DefaultReplacement = '-'
)

// Rule maps a path component to its sanitized form.
//
// A Rule is an immutable value; the zero Rule leaves every name unchanged.
type Rule struct {
	// Invalid holds every character that must not appear in a name.
	Invalid string

	// Replacement is written in place of each invalid character.
	Replacement rune
}

// Default returns the rule for SMB destinations: `"`, `'` and `:` become `-`.
func Default() Rule {
	return Rule{Invalid: DefaultInvalid, Replacement: DefaultReplacement}
}

// NewRule builds a Rule and checks that applying it yields a usable name.
//
// The replacement must not be one of the invalid characters, a path
// separator, or NUL.
func NewRule(invalid string, replacement rune) (Rule, error) {
	switch {
	case replacement == 0:
		return Rule{}, fmt.Errorf("replacement must not be NUL")
	case replacement == '/' || replacement == '\\':
		return Rule{}, fmt.Errorf("replacement %q is a path separator", replacement)
	case strings.ContainsRune(invalid, replacement):
		return Rule{}, fmt.Errorf("replacement %q is itself an invalid character", replacement)
	}
	return Rule{Invalid: invalid, Replacement: replacement}, nil
}

// NeedsChange reports whether name contains at least one invalid character.
func (r Rule) NeedsChange(name string) bool {
	return r.Invalid != "" && strings.ContainsAny(name, r.Invalid)
}

// Apply returns name with every invalid character replaced.
// Names that need no change are returned as-is.
func (r Rule) Apply(name string) string {
	if !r.NeedsChange(name) {
		return name
	}
	return strings.Map(func(c rune) rune {
		if strings.ContainsRune(r.Invalid, c) {
			return r.Replacement
		}
		return c
	}, name)
}
