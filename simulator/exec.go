package simulator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExecRunner runs each trial as a separate process:
//
//	<Binary> [Args...] -a<arrival rate> -s<service rate> -T<simulation time>
//
// and decodes the JSON document the process writes to stdout.
type ExecRunner struct {
	Binary string
	Args   []string
}

func NewExecRunner(binary string, args ...string) *ExecRunner {
	return &ExecRunner{Binary: binary, Args: args}
}

// CommandArgs returns the arguments passed to the binary for p.
func (r *ExecRunner) CommandArgs(p Params) []string {
	args := make([]string, 0, len(r.Args)+3)
	args = append(args, r.Args...)
	return append(args,
		fmt.Sprintf("-a%f", p.ArrivalRate),
		fmt.Sprintf("-s%f", p.ServiceRate),
		fmt.Sprintf("-T%f", p.SimulationTime),
	)
}

func (r *ExecRunner) Run(ctx context.Context, p Params) (Result, error) {
	if r.Binary == "" {
		return Result{}, &SimulationError{Params: p, Err: errors.New("no simulator binary configured")}
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, r.CommandArgs(p)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return Result{}, &SimulationError{Params: p, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	res, err := Decode(stdout.Bytes())
	if err != nil {
		return Result{}, &SimulationError{Params: p, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return res, nil
}
