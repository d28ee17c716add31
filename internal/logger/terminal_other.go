//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package logger

// IsTerminal always reports false on platforms without terminal detection.
func IsTerminal(fd uintptr) bool {
	return false
}
