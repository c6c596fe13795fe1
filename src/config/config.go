// Package config reads the kpcs_solve settings from command-line flags, an
// optional config file and KPCS_* environment variables, in that order of
// precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"kp_with_conflicts/src/kpcs"
)

const (
	BackendBnB     = "bnb"
	BackendHiGHS   = "highs"
	BackendLPSolve = "lpsolve"
	BackendPB      = "pb"
)

var Backends = []string{BackendBnB, BackendHiGHS, BackendLPSolve, BackendPB}

// DefaultPatterns match the instance files of the benchmark archives once
// they are extracted.
var DefaultPatterns = []string{
	"C1/BPPC_*.txt_*",
	"C3/BPPC_*.txt_*",
	"C10/BPPC_*.txt_*",
	"R3/BPPC_*.txt_*",
	"R10/BPPC_*.txt_*",
	"sparse_corr/test_*.dat",
	"sparse_rand/test_*.dat",
}

type Config struct {
	NoDownload  bool
	NoInstall   bool
	Backend     string
	TimeLimit   time.Duration
	Patterns    []string
	Dir         string
	Report      string
	MetricsFile string
	LogLevel    string
	LogFormat   string
}

// ExitError is an error that carries the process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func newFlagSet(output io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("kpcs_solve", pflag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprint(output, `
kpcs_solve - batch solver for the 0/1 knapsack problem with conflicts.

Usage:
  kpcs_solve [options]

Options:
`)
		fs.PrintDefaults()
	}

	fs.Bool("no-download", false, "Skip downloading and unzipping instance archives.")
	fs.Bool("no-install", false, "Skip the dependency installation step.")
	fs.String("config", "", "Path to a YAML, TOML or JSON config file.")
	fs.String("backend", BackendBnB, "Solver backend: "+strings.Join(Backends, ", ")+".")
	fs.Duration("time-limit", kpcs.DefaultTimeLimit, "Time limit for each instance.")
	fs.StringSlice("pattern", DefaultPatterns, "Glob pattern of instance files, relative to --dir. Repeatable.")
	fs.String("dir", ".", "Directory where archives are extracted and instances are searched.")
	fs.String("report", "", "Write a YAML summary to this file.")
	fs.String("metrics-file", "", "Write Prometheus metrics in text format to this file.")
	fs.String("log-level", "info", "Logging level: debug, info, warn or error.")
	fs.String("log-format", "console", "Log output format: console or json.")
	return fs
}

// Parse processes command-line arguments. It returns the merged Config, a
// boolean telling the caller to exit cleanly (help was requested), or an
// *ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	fs := newFlagSet(output)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	v := viper.New()
	v.SetEnvPrefix("KPCS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, false, &ExitError{Code: 1, Message: err.Error()}
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, false, &ExitError{Code: 1, Message: fmt.Sprintf("could not read config file %s: %v", file, err)}
		}
	}

	cfg := &Config{
		NoDownload:  v.GetBool("no-download"),
		NoInstall:   v.GetBool("no-install"),
		Backend:     strings.ToLower(v.GetString("backend")),
		TimeLimit:   v.GetDuration("time-limit"),
		Patterns:    v.GetStringSlice("pattern"),
		Dir:         v.GetString("dir"),
		Report:      v.GetString("report"),
		MetricsFile: v.GetString("metrics-file"),
		LogLevel:    strings.ToLower(v.GetString("log-level")),
		LogFormat:   strings.ToLower(v.GetString("log-format")),
	}
	if err := cfg.validate(); err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return cfg, false, nil
}

func (c *Config) validate() error {
	valid := false
	for _, b := range Backends {
		if c.Backend == b {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("invalid backend %q: must be one of %s", c.Backend, strings.Join(Backends, ", "))
	}
	if c.TimeLimit <= 0 {
		return fmt.Errorf("invalid time-limit %v: must be positive", c.TimeLimit)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel)
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log-format %q: must be 'console' or 'json'", c.LogFormat)
	}
	if len(c.Patterns) == 0 {
		return errors.New("at least one pattern is required")
	}
	if c.Dir == "" {
		c.Dir = "."
	}
	return nil
}
