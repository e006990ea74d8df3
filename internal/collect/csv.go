package collect

import (
	"encoding/csv"
	"fmt"
	"os"
)

// WriteSnapshotFile truncates and recreates path with the fixed header and
// one row per snapshot. Each run replaces the previous file wholesale;
// concurrent writers on the same path race and the last one wins.
func WriteSnapshotFile(path string, rows []Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			f.Close()
			return fmt.Errorf("write snapshot row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush snapshot file: %w", err)
	}

	return f.Close()
}
