package sweep

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNonPositiveBound = errors.New("sweep bounds must be positive")
	ErrEmptyRange       = errors.New("lambda1 must be greater than lambda0")
)

// Bounds is the arrival rate range swept by a job array.
type Bounds struct {
	Lambda0 float64 `json:"lambda0"`
	Lambda1 float64 `json:"lambda1"`
}

func (b Bounds) Validate() error {
	if !(b.Lambda0 > 0) || !(b.Lambda1 > 0) {
		return fmt.Errorf("%w: lambda0=%g lambda1=%g", ErrNonPositiveBound, b.Lambda0, b.Lambda1)
	}
	if b.Lambda1 <= b.Lambda0 {
		return fmt.Errorf("%w: lambda0=%g lambda1=%g", ErrEmptyRange, b.Lambda0, b.Lambda1)
	}
	return nil
}

// Interpolate maps frac in [0,1] geometrically onto [Lambda0, Lambda1].
func (b Bounds) Interpolate(frac float64) float64 {
	return b.Lambda0 * math.Pow(b.Lambda1/b.Lambda0, frac)
}

// TaskIndex converts a 1-based job-array task id into the 0-based index
// consumed by SmartParameterLoopIndex.
func TaskIndex(taskID int) int {
	return taskID - 1
}

// Point is the arrival rate a single task of the sweep is responsible for.
type Point struct {
	TaskID      int     `json:"task_id"`
	Index       int     `json:"index"`
	Fraction    float64 `json:"fraction"`
	ArrivalRate float64 `json:"arrival_rate"`
}

func NewPoint(taskID int, b Bounds) Point {
	idx := TaskIndex(taskID)
	frac := SmartParameterLoopIndex(idx)
	return Point{
		TaskID:      taskID,
		Index:       idx,
		Fraction:    frac,
		ArrivalRate: b.Interpolate(frac),
	}
}

// Plan returns the points of task ids 1..tasks.
func Plan(tasks int, b Bounds) []Point {
	if tasks <= 0 {
		return nil
	}
	points := make([]Point, 0, tasks)
	for id := 1; id <= tasks; id++ {
		points = append(points, NewPoint(id, b))
	}
	return points
}
