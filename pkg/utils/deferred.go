// Package utils holds small helpers shared by the CLI entry point.
package utils

import (
	"io"
	"sync"
)

// DeferredWriter buffers writes until Flush. It holds log output while the
// TUI owns the terminal.
type DeferredWriter struct {
	mu      sync.Mutex
	entries [][]byte
}

// Write stores a copy of p. It never fails.
func (d *DeferredWriter) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry := make([]byte, len(p))
	copy(entry, p)
	d.entries = append(d.entries, entry)
	return len(p), nil
}

// Len returns the number of buffered writes.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// Flush writes every buffered entry to w in order and empties the buffer.
// Entries after a failed write are kept.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, entry := range d.entries {
		if _, err := w.Write(entry); err != nil {
			d.entries = d.entries[i:]
			return err
		}
	}
	d.entries = nil
	return nil
}
