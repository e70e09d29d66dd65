package results

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const Header = "#run\tlambda\tmu\tsimulationTime\treturnTime\thasReturned"

const numColumns = 6

// WriteDataFile writes rows as a tab-separated data file, creating the
// parent directory when needed. An existing file is truncated.
func WriteDataFile(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, Header)
	for _, row := range rows {
		returned := 0
		if row.HasReturned {
			returned = 1
		}
		fmt.Fprintf(w, "%d\t%f\t%f\t%f\t%f\t%d\n",
			row.Run, row.ArrivalRate, row.ServiceRate, row.SimulationTime, row.ReturnTime, returned)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write data file: %w", err)
	}
	return f.Close()
}

// ReadDataFile parses a file written by WriteDataFile. Comment lines
// starting with '#' and blank lines are skipped.
func ReadDataFile(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []Row
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		row, err := parseRow(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		rows = append(rows, row)
	}
	return rows, scanner.Err()
}

func parseRow(text string) (Row, error) {
	fields := strings.Split(text, "\t")
	if len(fields) != numColumns {
		return Row{}, fmt.Errorf("expected %d columns, got %d", numColumns, len(fields))
	}
	run, err := strconv.Atoi(fields[0])
	if err != nil {
		return Row{}, fmt.Errorf("run: %w", err)
	}
	var floats [4]float64
	for i := range floats {
		if floats[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
			return Row{}, fmt.Errorf("column %d: %w", i+2, err)
		}
	}
	var returned bool
	switch fields[5] {
	case "0":
	case "1":
		returned = true
	default:
		return Row{}, fmt.Errorf("hasReturned: unexpected value %q", fields[5])
	}
	return Row{
		Run:            run,
		ArrivalRate:    floats[0],
		ServiceRate:    floats[1],
		SimulationTime: floats[2],
		ReturnTime:     floats[3],
		HasReturned:    returned,
	}, nil
}

// FileSink writes each report to its own data file.
type FileSink struct {
	Path string
}

func (s FileSink) Write(_ context.Context, r *Report) error {
	return WriteDataFile(s.Path, r.Rows)
}
