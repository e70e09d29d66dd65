// mm1q-sweep runs one task of an M/M/1 return-to-zero sweep. It is meant
// to be submitted as a job array: each task picks its arrival rate from
// the task id, runs the trials through the external simulator and writes
// <output dir>/<task id>.dat.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/yourusername/mm1q-sweep/config"
	"github.com/yourusername/mm1q-sweep/job"
	"github.com/yourusername/mm1q-sweep/log"
	"github.com/yourusername/mm1q-sweep/results"
	"github.com/yourusername/mm1q-sweep/simulator"
	"github.com/yourusername/mm1q-sweep/sweep"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "mm1q-sweep: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.LoadSweepConfig("mm1q-sweep", args, os.Stderr)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.Output); err != nil {
		return err
	}

	if cfg.Plan > 0 {
		return sweep.WritePlan(os.Stdout, sweep.Plan(cfg.Plan, cfg.Bounds()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sinks := []results.Sink{results.FileSink{Path: cfg.DataFilePath()}}
	if cfg.DB.Store {
		store, err := openStore(cfg.DB)
		if err != nil {
			return err
		}
		sinks = append(sinks, store)
	}

	runner := simulator.NewExecRunner(cfg.Simulator.Binary, cfg.Simulator.Args...)
	if _, err := job.New(cfg, runner, sinks...).Run(ctx); err != nil {
		return err
	}
	log.Infow("data file written", "path", cfg.DataFilePath())
	return nil
}

func openStore(cfg config.StoreConfig) (*results.Store, error) {
	if cfg.Recreate {
		if err := config.DropAndRecreateDatabase(config.LoadDBConfig()); err != nil {
			return nil, err
		}
	}
	db, err := config.ConnectDB()
	if err != nil {
		return nil, err
	}
	store := results.NewStore(db)
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate results tables: %w", err)
	}
	return store, nil
}
