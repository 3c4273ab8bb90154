package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
)

// WriteFile persists a trace as zstd-compressed JSONL: the run header on the
// first line, then one IntervalRecord per line.
func WriteFile(path string, st *SimulationTrace) error {
	if st == nil {
		return fmt.Errorf("nil trace")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create trace file: %w", err)
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("init zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)

	if err := enc.Encode(st.Header); err != nil {
		zw.Close()
		return fmt.Errorf("encode trace header: %w", err)
	}
	for i := range st.Intervals {
		if err := enc.Encode(&st.Intervals[i]); err != nil {
			zw.Close()
			return fmt.Errorf("encode interval %d: %w", st.Intervals[i].Interval, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush trace: %w", err)
	}
	return nil
}

// ReadFile loads a trace previously written with WriteFile.
func ReadFile(path string) (*SimulationTrace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("init zstd reader: %w", err)
	}
	defer zr.Close()

	dec := json.NewDecoder(bufio.NewReader(zr))

	st := New(RunHeader{}, LevelIntervals)
	if err := dec.Decode(&st.Header); err != nil {
		return nil, fmt.Errorf("decode trace header: %w", err)
	}
	for {
		var rec IntervalRecord
		if err := dec.Decode(&rec); err != nil {
			break
		}
		st.Intervals = append(st.Intervals, rec)
	}
	return st, nil
}
