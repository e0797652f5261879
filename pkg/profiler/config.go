package profiler

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/psantana5/timeprofile/pkg/sink"
)

// Config holds measurement configuration
type Config struct {
	// Timeout is the maximum wait for the result-file write lock.
	Timeout time.Duration

	// IgnoreTimeout controls the lock-timeout policy: true (default)
	// silently drops the row so instrumentation can never block the
	// measured workload; false surfaces the timeout through Stop.
	IgnoreTimeout bool

	// Verbose hands a formatted result line to LogFunction after
	// every finished measurement.
	Verbose bool

	// LogFunction receives verbose messages. Defaults to stdout.
	LogFunction func(string)

	// AllowFormatting caps the identifier at ~30 characters in
	// verbose output, truncating with "..." when it does not fit.
	AllowFormatting bool

	// ResultPath is the output location without extension; the CSV
	// sink appends .csv.
	ResultPath string

	// Autonaming derives the identifier from the enclosing function
	// when none is given.
	Autonaming bool

	// Sink overrides the default CSV sink when set. Mainly for the
	// database backends and tests.
	Sink sink.Sink
}

// DefaultConfig returns the canonical configuration
func DefaultConfig() Config {
	return Config{
		Timeout:         10 * time.Second,
		IgnoreTimeout:   true,
		Verbose:         false,
		LogFunction:     StdoutLog,
		AllowFormatting: true,
		ResultPath:      "./profile",
		Autonaming:      true,
	}
}

// StdoutLog is the default log sink
func StdoutLog(msg string) {
	fmt.Fprintln(os.Stdout, msg)
}

// normalized fills the capabilities a zero-value Config leaves out.
// Boolean fields keep their zero values: DefaultConfig is the
// canonical starting point, not Config{}.
func (c Config) normalized() Config {
	if c.LogFunction == nil {
		c.LogFunction = StdoutLog
	}
	if c.ResultPath == "" {
		c.ResultPath = "./profile"
	}
	if c.Timeout < 0 {
		c.Timeout = 0
	}
	return c
}

// fileConfig is the YAML shape of a config file. Pointers distinguish
// "absent" from "false" so file values only override what they set.
type fileConfig struct {
	Timeout         string `yaml:"timeout"`
	IgnoreTimeout   *bool  `yaml:"ignore_timeout"`
	Verbose         *bool  `yaml:"verbose"`
	AllowFormatting *bool  `yaml:"allow_formatting"`
	ResultPath      string `yaml:"result_path"`
	Autonaming      *bool  `yaml:"autonaming"`
}

// LoadConfig reads a YAML config file over DefaultConfig. Timeout
// accepts Go duration strings ("1.5s") or a bare number of seconds.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Timeout != "" {
		d, err := parseTimeout(fc.Timeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid timeout %q: %w", fc.Timeout, err)
		}
		cfg.Timeout = d
	}
	if fc.IgnoreTimeout != nil {
		cfg.IgnoreTimeout = *fc.IgnoreTimeout
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.AllowFormatting != nil {
		cfg.AllowFormatting = *fc.AllowFormatting
	}
	if fc.ResultPath != "" {
		cfg.ResultPath = fc.ResultPath
	}
	if fc.Autonaming != nil {
		cfg.Autonaming = *fc.Autonaming
	}

	return cfg, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)), nil
}
