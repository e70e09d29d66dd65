package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yourusername/mm1q-sweep/sweep"
)

const (
	EnvPrefix = "MM1Q"

	defaultTaskEnv        = "SGE_TASK_ID"
	defaultOutputDir      = "mm1q"
	defaultBinary         = "cmm1q"
	defaultSweepName      = "mm1q"
	defaultLambda0        = 0.1
	defaultLambda1        = 10.0
	defaultServiceRate    = 1.0
	defaultRuns           = 1000
	defaultSimulationTime = 1e6
	defaultWorkers        = 1
	defaultLogLevel       = "info"
	defaultLogOutput      = "stderr"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// SweepConfig is everything one task of the sweep needs to run.
type SweepConfig struct {
	Task      TaskConfig      `mapstructure:"task"`
	Output    OutputConfig    `mapstructure:"output"`
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Sweep     ParamsConfig    `mapstructure:"sweep"`
	DB        StoreConfig     `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	// Plan, when positive, prints the points of tasks 1..Plan and exits.
	Plan int `mapstructure:"plan"`
}

// TaskConfig identifies the task. ID is 1-based; when it is not given
// explicitly it is read from the environment variable named by Env.
type TaskConfig struct {
	ID  int    `mapstructure:"id"`
	Env string `mapstructure:"env"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

type SimulatorConfig struct {
	Binary string   `mapstructure:"binary"`
	Args   []string `mapstructure:"args"`
}

type ParamsConfig struct {
	Name           string  `mapstructure:"name"`
	Lambda0        float64 `mapstructure:"lambda0"`
	Lambda1        float64 `mapstructure:"lambda1"`
	ServiceRate    float64 `mapstructure:"mu"`
	Runs           int     `mapstructure:"runs"`
	SimulationTime float64 `mapstructure:"time"`
	Workers        int     `mapstructure:"workers"`
}

type StoreConfig struct {
	Store    bool `mapstructure:"store"`
	Recreate bool `mapstructure:"recreate"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// Bounds returns the arrival rate range of the sweep.
func (c *SweepConfig) Bounds() sweep.Bounds {
	return sweep.Bounds{Lambda0: c.Sweep.Lambda0, Lambda1: c.Sweep.Lambda1}
}

// DataFilePath is <output dir>/<task id>.dat.
func (c *SweepConfig) DataFilePath() string {
	return filepath.Join(c.Output.Dir, fmt.Sprintf("%d.dat", c.Task.ID))
}

// NewFlagSet declares the command line flags understood by LoadSweepConfig.
func NewFlagSet(name string, usage io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(usage)
	fs.SortFlags = false

	fs.IntP("task.id", "t", 0, "1-based task id (default: read from $<task.env>)")
	fs.String("task.env", defaultTaskEnv, "environment variable holding the task id")
	fs.StringP("output.dir", "o", defaultOutputDir, "directory the <task id>.dat data file is written to")
	fs.StringP("simulator.binary", "b", defaultBinary, "simulator executable")
	fs.StringSlice("simulator.args", nil, "extra arguments passed to the simulator before the rates")
	fs.String("sweep.name", defaultSweepName, "sweep name used when storing results")
	fs.Float64("sweep.lambda0", defaultLambda0, "lowest arrival rate of the sweep")
	fs.Float64("sweep.lambda1", defaultLambda1, "highest arrival rate of the sweep")
	fs.Float64("sweep.mu", defaultServiceRate, "service rate")
	fs.IntP("sweep.runs", "r", defaultRuns, "trials per task")
	fs.Float64P("sweep.time", "T", defaultSimulationTime, "simulated time per trial")
	fs.IntP("sweep.workers", "w", defaultWorkers, "trials run concurrently")
	fs.Bool("db.store", false, "also store results in Postgres (DB_* variables)")
	fs.Bool("db.recreate", false, "drop and recreate the results database first")
	fs.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.String("log.output", defaultLogOutput, "log output (stdout, stderr or filepath)")
	fs.Int("plan", 0, "print the sweep points of tasks 1..N as JSON lines and exit")

	fs.Usage = func() {
		fmt.Fprintf(usage, "Usage: %s [flags]\n\nFlags:\n", name)
		fs.PrintDefaults()
		fmt.Fprintf(usage, "\nEvery flag can also be set through the environment with the %s_ prefix,\n", EnvPrefix)
		fmt.Fprintf(usage, "  dots replaced by underscores. For example %s_SWEEP_RUNS=100.\n", EnvPrefix)
	}
	return fs
}

// LoadSweepConfig builds the configuration from, in increasing priority,
// defaults, a .env file, the environment and the command line.
func LoadSweepConfig(name string, args []string, usage io.Writer) (*SweepConfig, error) {
	_ = godotenv.Load()

	fs := NewFlagSet(name, usage)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}

	cfg := &SweepConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Task.ID == 0 && cfg.Task.Env != "" {
		if raw := strings.TrimSpace(os.Getenv(cfg.Task.Env)); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: $%s=%q is not a task id", ErrInvalidConfig, cfg.Task.Env, raw)
			}
			cfg.Task.ID = id
		}
	}
	return cfg, nil
}

// Validate checks the configuration of a task. In plan mode only the sweep
// bounds matter.
func (c *SweepConfig) Validate() error {
	if err := c.Bounds().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Plan > 0 {
		return nil
	}
	switch {
	case c.Task.ID < 1:
		return fmt.Errorf("%w: task id must be at least 1 (use --task.id or $%s)", ErrInvalidConfig, c.Task.Env)
	case c.Sweep.Runs < 1:
		return fmt.Errorf("%w: runs must be at least 1", ErrInvalidConfig)
	case !(c.Sweep.SimulationTime > 0):
		return fmt.Errorf("%w: simulation time must be positive", ErrInvalidConfig)
	case !(c.Sweep.ServiceRate > 0):
		return fmt.Errorf("%w: service rate must be positive", ErrInvalidConfig)
	case c.Sweep.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	case c.Simulator.Binary == "":
		return fmt.Errorf("%w: simulator binary is required", ErrInvalidConfig)
	case c.Output.Dir == "":
		return fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	}
	return nil
}
