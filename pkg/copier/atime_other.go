//go:build !linux && !darwin

package copier

import (
	"io/fs"
	"time"
)

// accessTime falls back to the modification time where the platform stat
// structure is not decoded.
func accessTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}
