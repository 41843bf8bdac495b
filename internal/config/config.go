package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	apperrors "github.com/Dicklesworthstone/sysmonitor/internal/errors"
	"github.com/Dicklesworthstone/sysmonitor/internal/sampler"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SYSMONITOR_"

// Modes accepted by -m.
const (
	ModeCPU  = "cpu"
	ModeMem  = "mem"
	ModeProc = "proc"
)

// Sources accepted by --source.
const (
	SourceProcfs   = sampler.SourceProcfs
	SourceGopsutil = sampler.SourceGopsutil
)

// DefaultLogPath is where the session log is written when not configured.
const DefaultLogPath = "syslog.txt"

// Config carries runtime options for sysmonitor.
type Config struct {
	Mode         string
	Continuous   int
	Delay        time.Duration
	LogPath      string
	StatPath     string
	Source       string
	MetricsAddr  string
	Interactive  bool
	MenuInterval time.Duration
	Verbose      bool
}

func Default() Config {
	return Config{
		Mode:         ModeCPU,
		Continuous:   0,
		Delay:        time.Second,
		LogPath:      DefaultLogPath,
		StatPath:     sampler.DefaultStatPath,
		Source:       SourceProcfs,
		MetricsAddr:  "",
		Interactive:  false,
		MenuInterval: 2 * time.Second,
		Verbose:      false,
	}
}

// Bind registers the command-line flags for cfg on fs. Defaults come from
// the current values in cfg.
func Bind(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Mode, "mode", "m", cfg.Mode, "display mode: cpu|mem|proc")
	fs.IntVarP(&cfg.Continuous, "continuous", "c", cfg.Continuous, "continuous CPU monitoring every `seconds`")
	fs.BoolVarP(&cfg.Interactive, "interactive", "i", cfg.Interactive, "interactive menu mode")
	fs.DurationVar(&cfg.Delay, "delay", cfg.Delay, "pause between the two one-shot CPU samples")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "session log `path`")
	fs.StringVar(&cfg.StatPath, "stat-path", cfg.StatPath, "kernel counter file read by the procfs source")
	fs.StringVar(&cfg.Source, "source", cfg.Source, "CPU counter source: procfs|gopsutil")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on `addr` in continuous mode")
	fs.DurationVar(&cfg.MenuInterval, "menu-interval", cfg.MenuInterval, "refresh interval for continuous monitoring started from the menu")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "debug diagnostics on stderr")
}

// envOverride maps one SYSMONITOR_ variable to the flag it shadows.
type envOverride struct {
	envKey string
	flag   string
	apply  func(*Config, string)
}

var envOverrides = []envOverride{
	{"DELAY", "delay", func(c *Config, v string) {
		if d, ok := parseSeconds(v); ok {
			c.Delay = d
		}
	}},
	{"LOG", "log", func(c *Config, v string) { c.LogPath = v }},
	{"STAT_PATH", "stat-path", func(c *Config, v string) { c.StatPath = v }},
	{"SOURCE", "source", func(c *Config, v string) { c.Source = strings.ToLower(v) }},
	{"METRICS_ADDR", "metrics-addr", func(c *Config, v string) { c.MetricsAddr = v }},
	{"VERBOSE", "verbose", func(c *Config, v string) {
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			c.Verbose = true
		case "false", "0", "no":
			c.Verbose = false
		}
	}},
}

// ApplyEnv applies environment overrides to cfg. Flags set explicitly on
// fs win over the environment; fs may be nil.
func ApplyEnv(fs *pflag.FlagSet, cfg *Config) {
	applyEnv(fs, cfg, os.Getenv)
}

func applyEnv(fs *pflag.FlagSet, cfg *Config, getenv func(string) string) {
	for _, o := range envOverrides {
		v := getenv(EnvPrefix + o.envKey)
		if v == "" {
			continue
		}
		if fs != nil && fs.Changed(o.flag) {
			continue
		}
		o.apply(cfg, v)
	}
}

// parseSeconds accepts a Go duration or a bare number of seconds.
func parseSeconds(v string) (time.Duration, bool) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if d, err := time.ParseDuration(v + "s"); err == nil {
		return d, true
	}
	return 0, false
}

// Validate reports the first invalid option as an apperrors.ConfigError.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeCPU, ModeMem, ModeProc:
	default:
		return apperrors.NewConfigError("invalid parameter '%s'. Use -m [cpu/mem/proc]", c.Mode)
	}
	switch c.Source {
	case SourceProcfs, SourceGopsutil:
	default:
		return apperrors.NewConfigError("invalid source '%s'. Use --source [procfs/gopsutil]", c.Source)
	}
	if c.Continuous < 0 {
		return apperrors.NewConfigError("invalid interval %d: seconds must not be negative", c.Continuous)
	}
	if c.Delay <= 0 {
		return apperrors.NewConfigError("invalid delay %s: must be positive", c.Delay)
	}
	if c.MenuInterval <= 0 {
		return apperrors.NewConfigError("invalid menu interval %s: must be positive", c.MenuInterval)
	}
	return nil
}

// ValidateFlags runs Validate and then the checks that depend on which
// flags were given: an explicit -c must name a positive interval.
func (c Config) ValidateFlags(fs *pflag.FlagSet) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if fs != nil && fs.Changed("continuous") && c.Continuous == 0 {
		return apperrors.NewConfigError("invalid interval 0: seconds must be positive")
	}
	return nil
}

// Interval returns the continuous-mode refresh interval.
func (c Config) Interval() time.Duration {
	return time.Duration(c.Continuous) * time.Second
}
