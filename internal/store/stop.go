package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// StopMarker is a durable cooperative cancellation flag backed by the
// presence or absence of a sentinel file. The pipeline polls it between
// stages; an operator sets and clears it via the stop subcommand.
type StopMarker struct {
	path string
}

func NewStopMarker(path string) *StopMarker {
	return &StopMarker{path: path}
}

// IsSet reports whether the stop marker is present. A transient stat failure
// degrades to false rather than an error: failing open on a cancellation
// check is safer than crashing a long-running batch, and the worst case is
// one extra iteration.
func (m *StopMarker) IsSet() bool {
	if m == nil || m.path == "" {
		return false
	}

	_, err := os.Stat(m.path)
	return err == nil
}

// Set creates the sentinel. Setting an already-set marker is a no-op.
func (m *StopMarker) Set() error {
	file, err := os.OpenFile(m.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create stop marker: %w", err)
	}

	return file.Close()
}

// Clear removes the sentinel. Clearing an absent marker is a no-op.
func (m *StopMarker) Clear() error {
	err := os.Remove(m.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stop marker: %w", err)
	}

	return nil
}
