// Package job runs one task of an arrival rate sweep: it resolves the
// task's arrival rate, runs the configured number of independent trials
// and hands the outcome to the result sinks.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/mm1q-sweep/config"
	"github.com/yourusername/mm1q-sweep/log"
	"github.com/yourusername/mm1q-sweep/results"
	"github.com/yourusername/mm1q-sweep/simulator"
	"github.com/yourusername/mm1q-sweep/sweep"
)

// Job binds a task configuration to the trial runner and result sinks.
type Job struct {
	Config *config.SweepConfig
	Runner simulator.Runner
	Sinks  []results.Sink

	now func() time.Time
}

func New(cfg *config.SweepConfig, runner simulator.Runner, sinks ...results.Sink) *Job {
	return &Job{Config: cfg, Runner: runner, Sinks: sinks, now: time.Now}
}

// Point returns the sweep point of the configured task.
func (j *Job) Point() sweep.Point {
	return sweep.NewPoint(j.Config.Task.ID, j.Config.Bounds())
}

// Run executes every trial of the task, at most Sweep.Workers at a time.
// The first failing trial cancels the rest and its error is returned;
// nothing is written to the sinks in that case.
func (j *Job) Run(ctx context.Context) (*results.Report, error) {
	if err := j.Config.Validate(); err != nil {
		return nil, err
	}
	if j.now == nil {
		j.now = time.Now
	}
	cfg := j.Config.Sweep
	point := j.Point()
	params := simulator.Params{
		ArrivalRate:    point.ArrivalRate,
		ServiceRate:    cfg.ServiceRate,
		SimulationTime: cfg.SimulationTime,
	}

	report := &results.Report{
		ID:        uuid.New(),
		SweepName: cfg.Name,
		Point:     point,
		Rows:      make([]results.Row, cfg.Runs),
		Outputs:   make([][]byte, cfg.Runs),
		StartedAt: j.now(),
	}
	log.Infow("task started",
		"task", point.TaskID,
		"lambdaIndex", point.Fraction,
		"lambda", point.ArrivalRate,
		"mu", cfg.ServiceRate,
		"runs", cfg.Runs,
		"workers", cfg.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for run := range cfg.Runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := j.Runner.Run(gctx, params)
			if err != nil {
				return fmt.Errorf("run %d: %w", run, err)
			}
			// each goroutine owns its own slot
			report.Rows[run] = results.Row{
				Run:            run,
				ArrivalRate:    params.ArrivalRate,
				ServiceRate:    params.ServiceRate,
				SimulationTime: params.SimulationTime,
				ReturnTime:     res.CurrentTime,
				HasReturned:    res.HasReturnedToZero,
			}
			report.Outputs[run] = res.Raw
			log.Debugw("trial finished", "task", point.TaskID, "run", run,
				"returned", res.HasReturnedToZero, "time", res.CurrentTime)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Errorw(err, fmt.Sprintf("task %d failed", point.TaskID))
		return nil, err
	}
	report.FinishedAt = j.now()

	for _, sink := range j.Sinks {
		if err := sink.Write(ctx, report); err != nil {
			return report, fmt.Errorf("write results of task %d: %w", point.TaskID, err)
		}
	}
	if report.Returned() == 0 {
		log.Warnw("queue never returned to zero", "task", point.TaskID, "lambda", point.ArrivalRate)
	}
	log.Infow("task finished",
		"task", point.TaskID,
		"returned", report.Returned(),
		"runs", cfg.Runs,
		"elapsed", report.FinishedAt.Sub(report.StartedAt).String())
	return report, nil
}
