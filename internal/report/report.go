// Package report implements the tool's two byte-stream channels:
// the reporting channel (completed destinations, fsynced between batches)
// and the logging channel (planned-action lines, optionally colorized).
package report

import (
	"bufio"
	"errors"
	"os"
	"syscall"
)

// Channel is the reporting channel: a buffered writer over an *os.File
// that exposes Sync() so the organize engine can fsync it between flush
// batches — a destination path is emitted only after its content and
// parent directory have been fsynced.
type Channel struct {
	f *os.File
	w *bufio.Writer
}

// NewChannel wraps f (typically os.Stdout).
func NewChannel(f *os.File) *Channel {
	return &Channel{f: f, w: bufio.NewWriter(f)}
}

// Write implements io.Writer.
func (c *Channel) Write(p []byte) (int, error) {
	return c.w.Write(p)
}

// Sync flushes the buffer and fsyncs the underlying file. Sync is a no-op
// (not an error) when the underlying file is a pipe or terminal, since
// those have no durability semantics to fsync in the first place — only a
// real destination file on disk needs this guarantee.
func (c *Channel) Sync() error {
	if err := c.w.Flush(); err != nil {
		return err
	}

	err := c.f.Sync()
	if err == nil || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTSUP) {
		return nil
	}

	return err
}
