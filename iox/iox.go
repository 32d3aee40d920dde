// Package iox provides I/O helpers for resource cleanup and output
// accounting.
package iox

import (
	"bytes"
	"io"
)

// DiscardClose closes c and discards the error.
// Use in defer statements where close errors are unactionable:
//
//	defer iox.DiscardClose(f)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c.
// Designed for t.Cleanup and b.Cleanup registration:
//
//	t.Cleanup(iox.CloseFunc(client))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// DiscardErr calls fn and discards the returned error.
// Use for non-Close cleanup calls (e.g. Flush) where errors are unactionable:
//
//	defer iox.DiscardErr(w.Flush)
func DiscardErr(fn func() error) { _ = fn() }

// CountingWriter wraps an io.Writer and counts bytes and newline-terminated
// lines written through it. Not safe for concurrent use; wrap the single
// consumer-side stream only.
type CountingWriter struct {
	W     io.Writer
	Bytes int64
	Lines int64
}

// Write implements io.Writer.
func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.W.Write(p)
	c.Bytes += int64(n)
	c.Lines += int64(bytes.Count(p[:n], []byte{'\n'}))
	return n, err
}
