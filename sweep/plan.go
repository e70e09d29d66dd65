package sweep

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WritePlan writes one JSON object per point.
func WritePlan(w io.Writer, points []Point) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, p := range points {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode task %d: %w", p.TaskID, err)
		}
	}
	return bw.Flush()
}

// LoadPlan reads a plan written by WritePlan. Blank lines are ignored.
func LoadPlan(path string) ([]Point, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var points []Point
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var p Point
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		points = append(points, p)
	}
	return points, scanner.Err()
}
