// Package cli wires the sysmonitor command line to the session controller.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/sysmonitor/internal/config"
	apperrors "github.com/Dicklesworthstone/sysmonitor/internal/errors"
	"github.com/Dicklesworthstone/sysmonitor/internal/logging"
	"github.com/Dicklesworthstone/sysmonitor/internal/metrics"
	"github.com/Dicklesworthstone/sysmonitor/internal/monitor"
	"github.com/Dicklesworthstone/sysmonitor/internal/report"
	"github.com/Dicklesworthstone/sysmonitor/internal/sampler"
	"github.com/Dicklesworthstone/sysmonitor/internal/ui"
)

const helpText = `
SysMonitor++ - System Monitoring Tool
=====================================

Usage:
  sysmonitor                Two CPU samples one delay apart
  sysmonitor -i             Interactive menu mode
  sysmonitor -m cpu         Display CPU usage only
  sysmonitor -m mem         Display memory usage only
  sysmonitor -m proc        Display the process summary
  sysmonitor -c <seconds>   Continuous monitoring mode
  sysmonitor -h             Display this help message

Options:
      --delay duration        pause between the two one-shot samples (default 1s)
      --log path              session log (default syslog.txt)
      --stat-path path        kernel counter file (default /proc/stat)
      --source name           CPU counter source: procfs|gopsutil
      --metrics-addr addr     serve Prometheus metrics in continuous mode
      --menu-interval dur     continuous interval used from the menu (default 2s)
  -v, --verbose               debug diagnostics on stderr

Examples:
  sysmonitor -c 2           Monitor every 2 seconds
  sysmonitor -m cpu         Show CPU usage once

`

// Streams are the process standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

var (
	newSystem = func() monitor.SystemReader { return sampler.NewSystem() }
	runMenu   = ui.RunMenu
)

// NewRootCommand builds the sysmonitor command.
func NewRootCommand(streams Streams) *cobra.Command {
	cfg := config.Default()
	cmd := &cobra.Command{
		Use:           "sysmonitor",
		Short:         "Sample CPU, memory and process activity on this host",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return apperrors.NewConfigError("invalid option %q. Use -h for help.", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			config.ApplyEnv(cmd.Flags(), &cfg)
			if err := cfg.ValidateFlags(cmd.Flags()); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, streams)
		},
	}
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		fmt.Fprint(c.OutOrStdout(), helpText)
	})
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.NewConfigError("invalid option: %v. Use -h for help.", err)
	})
	config.Bind(cmd.Flags(), &cfg)
	return cmd
}

// Execute runs sysmonitor with args and returns the process exit code.
// SIGINT and SIGTERM cancel the session.
func Execute(args []string, streams Streams) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return ExecuteContext(ctx, args, streams)
}

// ExecuteContext is Execute with a caller-supplied context.
func ExecuteContext(ctx context.Context, args []string, streams Streams) int {
	cmd := NewRootCommand(streams)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
	case apperrors.IsConfigError(err):
		fmt.Fprintf(streams.Err, "Error: %v\n", err)
		fmt.Fprint(streams.Err, helpText)
	case errors.Is(err, apperrors.ErrInterrupted):
		fmt.Fprintln(streams.Err, "Interrupted.")
	default:
		fmt.Fprintf(streams.Err, "Error: %v\n", err)
	}
	return apperrors.ExitCode(err)
}

// run opens the session log, builds the controller and dispatches on the
// selected mode. The log is closed here, after the mode returns, also when
// the session was interrupted.
func run(ctx context.Context, cfg config.Config, streams Streams) error {
	diag := logging.NewConsoleLogger(streams.Err, cfg.Verbose)

	src, err := sampler.NewSource(cfg.Source, cfg.StatPath)
	if err != nil {
		return err
	}

	log, err := report.OpenLog(cfg.LogPath)
	if err != nil {
		fmt.Fprintf(streams.Err, "Warning: could not open %s: %v\n", cfg.LogPath, err)
	}
	defer log.Close()

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
	}
	rep := report.New(streams.Out, streams.Err, log, m, diag)
	rep.Event("Session started")

	cpu := sampler.New(sampler.CPUFamily, src, sampler.WithLogger(diag))
	ctrl := monitor.New(cpu, newSystem(), rep,
		monitor.WithDelay(cfg.Delay),
		monitor.WithLogger(diag),
		monitor.WithOutput(streams.Err),
	)

	diag.Debug("session starting",
		logging.String("mode", cfg.Mode),
		logging.Int("continuous", cfg.Continuous),
		logging.String("source", cfg.Source))

	err = dispatch(ctx, ctrl, cfg, m, streams)
	if ctx.Err() != nil {
		rep.Event("Interrupt received")
	}
	rep.Event("Session ended")
	return err
}

func dispatch(ctx context.Context, ctrl *monitor.Controller, cfg config.Config, m *metrics.Metrics, streams Streams) error {
	switch {
	case cfg.Interactive:
		choose := func(ctx context.Context) (ui.Choice, error) {
			return runMenu(ctx, streams.In, streams.Out)
		}
		return ctrl.Menu(ctx, choose, cfg.MenuInterval)
	case cfg.Continuous > 0:
		return ctrl.Watch(ctx, cfg.Interval(), m, cfg.MetricsAddr)
	case cfg.Mode == config.ModeMem:
		ctrl.Memory(ctx)
		return nil
	case cfg.Mode == config.ModeProc:
		ctrl.Processes(ctx)
		return nil
	default:
		return ctrl.OneShot(ctx)
	}
}
