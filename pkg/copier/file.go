package copier

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/marmos91/smbcopy/internal/bufpool"
	"github.com/marmos91/smbcopy/internal/logger"
)

// DefaultBufferSize is the copy buffer used when none is configured.
const DefaultBufferSize = bufpool.DefaultSize

// FileCopier copies one regular file, contents and metadata.
type FileCopier interface {
	CopyFile(src, dst string) error
}

// OSFileCopier copies through the OS filesystem. dst is created or
// truncated, then given src's permission bits and access and modification
// times. Copy buffers are reused across files.
type OSFileCopier struct {
	buffers *bufpool.Pool
}

// NewOSFileCopier creates an OSFileCopier with bufferSize-byte buffers.
// A non-positive size means DefaultBufferSize.
func NewOSFileCopier(bufferSize int) *OSFileCopier {
	return &OSFileCopier{buffers: bufpool.New(bufferSize)}
}

// CopyFile implements FileCopier.
func (c *OSFileCopier) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return err
	}

	var buf []byte
	if c.buffers != nil {
		buf = c.buffers.Get()
		defer c.buffers.Put(buf)
	} else {
		buf = make([]byte, DefaultBufferSize)
	}

	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return copyMetadata(dst, info)
}

// copyMetadata applies info's mode and times to dst. Filesystems that do not
// support permission bits (SMB mounts often do not) only get a warning.
func copyMetadata(dst string, info fs.FileInfo) error {
	mode := info.Mode() & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)
	if err := os.Chmod(dst, mode); err != nil {
		if !unsupported(err) {
			return fmt.Errorf("chmod %s: %w", dst, err)
		}
		logger.Warn("permissions not preserved", logger.KeyTarget, dst, logger.Err(err))
	}
	if err := os.Chtimes(dst, accessTime(info), info.ModTime()); err != nil {
		if !unsupported(err) {
			return fmt.Errorf("chtimes %s: %w", dst, err)
		}
		logger.Warn("timestamps not preserved", logger.KeyTarget, dst, logger.Err(err))
	}
	return nil
}

func unsupported(err error) bool {
	return errors.Is(err, syscall.ENOTSUP) || errors.Is(err, syscall.EOPNOTSUPP)
}
