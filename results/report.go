// Package results holds the outcome of a sweep task and the sinks it is
// written to.
package results

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/mm1q-sweep/sweep"
)

// Row is one trial of a task.
type Row struct {
	Run            int
	ArrivalRate    float64
	ServiceRate    float64
	SimulationTime float64
	ReturnTime     float64
	HasReturned    bool
}

// Report is everything a task produced.
type Report struct {
	ID         uuid.UUID
	SweepName  string
	Point      sweep.Point
	Rows       []Row
	Outputs    [][]byte // raw simulator output per row, may hold nils
	StartedAt  time.Time
	FinishedAt time.Time
}

// Returned counts the trials whose queue emptied within the window.
func (r *Report) Returned() int {
	n := 0
	for _, row := range r.Rows {
		if row.HasReturned {
			n++
		}
	}
	return n
}

// Sink receives finished reports.
type Sink interface {
	Write(ctx context.Context, r *Report) error
}
