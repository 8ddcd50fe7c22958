package sheet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// StaticLoader serves one fixed snapshot. Used for offline evaluation and
// replaying a captured sheet.
type StaticLoader struct {
	Snapshot *Snapshot
}

func (l *StaticLoader) Load(context.Context, bool) (*Snapshot, error) {
	if l.Snapshot == nil {
		return nil, fmt.Errorf("static loader has no snapshot")
	}
	return l.Snapshot, nil
}

func (l *StaticLoader) Invalidate(context.Context) error { return nil }

// ReadSnapshotFile decodes a snapshot written by WriteSnapshotFile.
func ReadSnapshotFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &snap, nil
}

func WriteSnapshotFile(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
