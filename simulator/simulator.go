// Package simulator runs single M/M/1 queue trials. The queueing dynamics
// live in an external binary; this package only drives it and decodes
// what it prints.
package simulator

import (
	"context"
	"fmt"
)

// Params are the inputs of one trial.
type Params struct {
	ArrivalRate    float64
	ServiceRate    float64
	SimulationTime float64
}

// Result is the outcome of one trial. CurrentTime is the simulated time at
// which the queue first emptied, or the end of the simulation window if it
// never did.
type Result struct {
	HasReturnedToZero bool
	CurrentTime       float64

	// Raw is the simulator output the result was decoded from, if any.
	Raw []byte
}

// Runner runs a single trial.
type Runner interface {
	Run(ctx context.Context, p Params) (Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, p Params) (Result, error)

func (f RunnerFunc) Run(ctx context.Context, p Params) (Result, error) {
	return f(ctx, p)
}

// SimulationError reports a trial the simulator could not complete.
type SimulationError struct {
	Params Params
	Stderr string
	Err    error
}

func (e *SimulationError) Error() string {
	msg := fmt.Sprintf("simulation a=%f s=%f T=%f: %v",
		e.Params.ArrivalRate, e.Params.ServiceRate, e.Params.SimulationTime, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *SimulationError) Unwrap() error { return e.Err }
