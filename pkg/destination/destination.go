// Package destination turns the destination argument into a local path.
//
// Plain paths are used as given. SMB locations (smb://host/share/...) are
// not spoken to directly: they are expected to be mounted by GVFS, which
// exposes each share under the user's runtime directory as
//
//	/run/user/<uid>/gvfs/smb-share:server=<host>,share=<share>
//
// Resolving an SMB location is a pure string transform onto that path.
package destination

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SMBScheme is the prefix that marks a destination as an SMB location.
const SMBScheme = "smb://"

var (
	// ErrInvalidSMBURL is returned for an smb:// location without host or share.
	ErrInvalidSMBURL = errors.New("invalid smb destination")

	// ErrNotMounted is returned by CheckMounted when the share's GVFS mount
	// point does not exist.
	ErrNotMounted = errors.New("smb share is not mounted")
)

// Resolver maps a destination argument to a local filesystem path.
type Resolver interface {
	Resolve(dest string) (string, error)
}

// MountChecker is implemented by resolvers that can tell whether the
// filesystem backing a destination is present.
type MountChecker interface {
	CheckMounted(dest string) error
}

// IsSMB reports whether dest uses the smb:// scheme.
func IsSMB(dest string) bool {
	return strings.HasPrefix(dest, SMBScheme)
}

// Location is a parsed smb:// destination.
type Location struct {
	Host  string
	Share string
	Path  string // slash-separated path inside the share, may be empty
}

// ParseSMB splits smb://host/share[/path] into its parts.
func ParseSMB(dest string) (Location, error) {
	if !IsSMB(dest) {
		return Location{}, fmt.Errorf("%w: %q does not start with %s", ErrInvalidSMBURL, dest, SMBScheme)
	}
	rest := strings.Trim(strings.TrimPrefix(dest, SMBScheme), "/")
	host, rest, _ := strings.Cut(rest, "/")
	share, sub, _ := strings.Cut(rest, "/")
	if host == "" || share == "" {
		return Location{}, fmt.Errorf("%w: %q (expected smb://host/share[/path])", ErrInvalidSMBURL, dest)
	}
	return Location{Host: host, Share: share, Path: strings.Trim(sub, "/")}, nil
}

// GVFS resolves smb:// locations onto GVFS mount points.
type GVFS struct {
	// RuntimeDir is the per-user runtime directory holding the gvfs
	// directory. Empty means /run/user/<uid>.
	RuntimeDir string
}

// NewGVFS returns a resolver for the current user.
func NewGVFS() GVFS {
	return GVFS{RuntimeDir: DefaultRuntimeDir()}
}

// DefaultRuntimeDir returns /run/user/<uid> for the current process.
func DefaultRuntimeDir() string {
	return fmt.Sprintf("/run/user/%d", os.Getuid())
}

func (g GVFS) runtimeDir() string {
	if g.RuntimeDir != "" {
		return g.RuntimeDir
	}
	return DefaultRuntimeDir()
}

// MountPoint returns the GVFS directory of the share named by loc.
func (g GVFS) MountPoint(loc Location) string {
	return filepath.Join(g.runtimeDir(), "gvfs", "smb-share:server="+loc.Host+",share="+loc.Share)
}

// Resolve implements Resolver. Non-SMB destinations are returned unchanged.
func (g GVFS) Resolve(dest string) (string, error) {
	if !IsSMB(dest) {
		return dest, nil
	}
	loc, err := ParseSMB(dest)
	if err != nil {
		return "", err
	}
	if loc.Path == "" {
		return g.MountPoint(loc), nil
	}
	return filepath.Join(g.MountPoint(loc), filepath.FromSlash(loc.Path)), nil
}

// CheckMounted implements MountChecker. It returns ErrNotMounted when dest is
// an SMB location whose share directory is missing, nil otherwise.
func (g GVFS) CheckMounted(dest string) error {
	if !IsSMB(dest) {
		return nil
	}
	loc, err := ParseSMB(dest)
	if err != nil {
		return err
	}
	mount := g.MountPoint(loc)
	if _, err := os.Stat(mount); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s (try: gio mount smb://%s/%s)", ErrNotMounted, mount, loc.Host, loc.Share)
	}
	return nil
}
