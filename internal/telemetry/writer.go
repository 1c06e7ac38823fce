package telemetry

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// WriteSeries writes each named series as <dir>/<name>.bin, raw
// little-endian float64, matching the layout downstream plotting
// expects. The directory is created if missing.
func WriteSeries(dir string, series map[string][]float64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writeOne(filepath.Join(dir, name+".bin"), series[name]); err != nil {
			return err
		}
	}
	return nil
}

func writeOne(path string, data []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := binary.Write(f, binary.LittleEndian, data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
