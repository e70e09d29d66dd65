package job

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/yourusername/mm1q-sweep/config"
	"github.com/yourusername/mm1q-sweep/results"
	"github.com/yourusername/mm1q-sweep/simulator"
)

func testConfig(c *qt.C, taskID, runs, workers int) *config.SweepConfig {
	return &config.SweepConfig{
		Task:      config.TaskConfig{ID: taskID, Env: "SGE_TASK_ID"},
		Output:    config.OutputConfig{Dir: filepath.Join(c.TempDir(), "mm1q")},
		Simulator: config.SimulatorConfig{Binary: "cmm1q"},
		Sweep: config.ParamsConfig{
			Name: "test", Lambda0: 0.1, Lambda1: 10, ServiceRate: 1,
			Runs: runs, SimulationTime: 100, Workers: workers,
		},
	}
}

// alternating returns to zero on even calls.
func alternating() simulator.Runner {
	var calls atomic.Int64
	return simulator.RunnerFunc(func(_ context.Context, p simulator.Params) (simulator.Result, error) {
		n := calls.Add(1)
		if n%2 == 0 {
			return simulator.Result{HasReturnedToZero: true, CurrentTime: p.SimulationTime / 2}, nil
		}
		return simulator.Result{CurrentTime: p.SimulationTime}, nil
	})
}

type memorySink struct {
	mu      sync.Mutex
	reports []*results.Report
	err     error
}

func (s *memorySink) Write(_ context.Context, r *results.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return s.err
}

func TestRun(t *testing.T) {
	c := qt.New(t)

	cfg := testConfig(c, 3, 10, 1)
	sink := &memorySink{}
	file := results.FileSink{Path: cfg.DataFilePath()}
	j := New(cfg, alternating(), sink, file)

	report, err := j.Run(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(report.Point.TaskID, qt.Equals, 3)
	c.Assert(report.Point.Fraction, qt.Equals, 0.5)
	c.Assert(report.Rows, qt.HasLen, 10)
	c.Assert(report.Returned(), qt.Equals, 5)
	c.Assert(report.SweepName, qt.Equals, "test")
	c.Assert(report.FinishedAt.Before(report.StartedAt), qt.IsFalse)
	for i, row := range report.Rows {
		c.Assert(row.Run, qt.Equals, i)
		c.Assert(row.ServiceRate, qt.Equals, 1.0)
		c.Assert(row.SimulationTime, qt.Equals, 100.0)
		c.Assert(row.ArrivalRate, qt.Equals, report.Point.ArrivalRate)
	}
	c.Assert(sink.reports, qt.HasLen, 1)

	rows, err := results.ReadDataFile(cfg.DataFilePath())
	c.Assert(err, qt.IsNil)
	c.Assert(rows, qt.HasLen, 10)
	c.Assert(rows[1].HasReturned, qt.IsTrue)
	c.Assert(rows[1].ReturnTime, qt.Equals, 50.0)
}

func TestRunFirstTaskUsesLowerBound(t *testing.T) {
	c := qt.New(t)

	var seen atomic.Value
	runner := simulator.RunnerFunc(func(_ context.Context, p simulator.Params) (simulator.Result, error) {
		seen.Store(p)
		return simulator.Result{}, nil
	})
	_, err := New(testConfig(c, 1, 1, 1), runner).Run(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(seen.Load().(simulator.Params).ArrivalRate, qt.Equals, 0.1)
}

func TestRunConcurrency(t *testing.T) {
	c := qt.New(t)

	var running, peak atomic.Int64
	runner := simulator.RunnerFunc(func(_ context.Context, p simulator.Params) (simulator.Result, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return simulator.Result{CurrentTime: p.SimulationTime}, nil
	})

	report, err := New(testConfig(c, 7, 40, 4), runner).Run(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(report.Rows, qt.HasLen, 40)
	c.Assert(peak.Load() <= 4, qt.IsTrue, qt.Commentf("peak concurrency %d", peak.Load()))
	for i, row := range report.Rows {
		c.Assert(row.Run, qt.Equals, i)
	}
}

func TestRunTrialFailure(t *testing.T) {
	c := qt.New(t)

	var calls atomic.Int64
	runner := simulator.RunnerFunc(func(ctx context.Context, p simulator.Params) (simulator.Result, error) {
		if calls.Add(1) == 3 {
			return simulator.Result{}, &simulator.SimulationError{Params: p, Err: errors.New("exit status 1")}
		}
		return simulator.Result{CurrentTime: 1}, nil
	})
	sink := &memorySink{}
	report, err := New(testConfig(c, 2, 100, 1), runner, sink).Run(context.Background())
	c.Assert(report, qt.IsNil)
	c.Assert(err, qt.ErrorMatches, `run 2: simulation .*: exit status 1`)

	var simErr *simulator.SimulationError
	c.Assert(errors.As(err, &simErr), qt.IsTrue)
	// remaining trials are skipped and nothing is written
	c.Assert(calls.Load(), qt.Equals, int64(3))
	c.Assert(sink.reports, qt.HasLen, 0)
}

func TestRunSinkFailure(t *testing.T) {
	c := qt.New(t)

	first := &memorySink{err: errors.New("disk full")}
	second := &memorySink{}
	report, err := New(testConfig(c, 2, 3, 2), alternating(), first, second).Run(context.Background())
	c.Assert(err, qt.ErrorMatches, `write results of task 2: disk full`)
	c.Assert(report, qt.Not(qt.IsNil))
	c.Assert(second.reports, qt.HasLen, 0)
}

func TestRunInvalidConfig(t *testing.T) {
	c := qt.New(t)

	cfg := testConfig(c, 0, 3, 1)
	_, err := New(cfg, alternating()).Run(context.Background())
	c.Assert(err, qt.ErrorIs, config.ErrInvalidConfig)
}

func TestRunCancelled(t *testing.T) {
	c := qt.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(testConfig(c, 2, 5, 1), alternating()).Run(ctx)
	c.Assert(err, qt.ErrorIs, context.Canceled)
}
