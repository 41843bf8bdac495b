// Package monitor drives sampling sessions: the two-sample one-shot flow,
// continuous monitoring and the interactive menu.
package monitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/Dicklesworthstone/sysmonitor/internal/errors"
	"github.com/Dicklesworthstone/sysmonitor/internal/logging"
	"github.com/Dicklesworthstone/sysmonitor/internal/metrics"
	"github.com/Dicklesworthstone/sysmonitor/internal/model"
	"github.com/Dicklesworthstone/sysmonitor/internal/report"
	"github.com/Dicklesworthstone/sysmonitor/internal/sampler"
	"github.com/Dicklesworthstone/sysmonitor/internal/ui"
)

// SystemReader supplies the instantaneous memory and process figures.
type SystemReader interface {
	Memory(ctx context.Context) (model.Memory, error)
	Processes(ctx context.Context) (model.Processes, error)
}

// Chooser returns the next menu selection.
type Chooser func(ctx context.Context) (ui.Choice, error)

// Controller owns the CPU sampler for one session and routes every result
// to the reporter.
type Controller struct {
	cpu    *sampler.UsageSampler
	system SystemReader
	rep    *report.Reporter
	diag   logging.Logger
	out    io.Writer
	delay  time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithDelay sets the pause between the two one-shot samples.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.diag = l }
}

// WithOutput sets where the wait indicator is drawn.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) { c.out = w }
}

// New creates a Controller.
func New(cpu *sampler.UsageSampler, system SystemReader, rep *report.Reporter, opts ...Option) *Controller {
	c := &Controller{
		cpu:    cpu,
		system: system,
		rep:    rep,
		diag:   logging.Nop(),
		out:    io.Discard,
		delay:  time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SampleCPU runs one sampling cycle. A failed cycle is reported and the
// baseline kept; it is never fatal.
func (c *Controller) SampleCPU(ctx context.Context) {
	name := c.cpu.Family().Name
	u, err := c.cpu.Collect(ctx)
	if err != nil {
		c.diag.Warn("sample failed", logging.String("family", name), logging.Err(err))
		c.rep.Failure(name, err)
		return
	}
	c.rep.Usage(name, u)
}

// OneShot takes a baseline, waits for the configured delay and reports the
// usage over that window. An interrupt before the second sample returns
// apperrors.ErrInterrupted.
func (c *Controller) OneShot(ctx context.Context) error {
	if ctx.Err() != nil {
		return errors.Wrap(apperrors.ErrInterrupted, "before first sample")
	}
	c.SampleCPU(ctx)
	if !c.wait(ctx) {
		return errors.Wrap(apperrors.ErrInterrupted, "waiting for second sample")
	}
	c.SampleCPU(ctx)
	return nil
}

// wait pauses for c.delay with a spinner. It reports false if ctx ended
// first.
func (c *Controller) wait(ctx context.Context) bool {
	s := newSpinner(c.out)
	s.UpdateSuffix(fmt.Sprintf(" sampling for %s...", c.delay))
	s.Start()
	defer s.Stop()
	return sleep(ctx, c.delay)
}

// Continuous samples CPU every interval until ctx is canceled. The interrupt
// is the normal way out, so cancellation returns nil.
func (c *Controller) Continuous(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return apperrors.NewConfigError("invalid interval %s: must be positive", interval)
	}
	c.rep.Banner("Continuous Monitoring Mode",
		fmt.Sprintf("Refreshing every %s. Press Ctrl+C to stop.", interval))
	c.rep.Event(fmt.Sprintf("Continuous monitoring started (interval %s)", interval))
	c.diag.Info("continuous monitoring", logging.Duration("interval", interval))

	for ctx.Err() == nil {
		c.SampleCPU(ctx)
		if !sleep(ctx, interval) {
			break
		}
	}
	c.rep.Event("Continuous monitoring stopped")
	return nil
}

// Watch runs Continuous and, when addr is set, serves m on addr alongside
// it. Both stop when ctx is canceled; a server failure ends the loop too.
func (c *Controller) Watch(ctx context.Context, interval time.Duration, m *metrics.Metrics, addr string) error {
	if addr == "" || m == nil {
		return c.Continuous(ctx, interval)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.diag.Info("serving metrics", logging.String("addr", addr))
		if err := m.Serve(gctx, addr); err != nil {
			return errors.Wrapf(err, "metrics server on %s", addr)
		}
		return nil
	})
	g.Go(func() error { return c.Continuous(gctx, interval) })
	return g.Wait()
}

// Memory reports one memory reading.
func (c *Controller) Memory(ctx context.Context) {
	m, err := c.system.Memory(ctx)
	if err != nil {
		c.diag.Warn("memory read failed", logging.Err(err))
		c.rep.SourceFailure("Memory", err)
		return
	}
	c.rep.Memory(m)
}

// Processes reports the process summary.
func (c *Controller) Processes(ctx context.Context) {
	p, err := c.system.Processes(ctx)
	if err != nil {
		c.diag.Warn("process read failed", logging.Err(err))
		c.rep.SourceFailure("Process summary", err)
		return
	}
	c.rep.Processes(p)
}

// Menu shows the menu until Exit is chosen or ctx ends. The session CPU
// sampler is reused, so the first CPU choice initializes and later ones
// report the usage since the previous choice.
func (c *Controller) Menu(ctx context.Context, choose Chooser, interval time.Duration) error {
	for ctx.Err() == nil {
		choice, err := choose(ctx)
		if err != nil {
			if apperrors.IsContextError(err) {
				return nil
			}
			return errors.Wrap(err, "menu")
		}
		c.diag.Debug("menu choice", logging.String("choice", choice.String()))
		switch choice {
		case ui.ChoiceCPU:
			c.SampleCPU(ctx)
		case ui.ChoiceMemory:
			c.Memory(ctx)
		case ui.ChoiceProcesses:
			c.Processes(ctx)
		case ui.ChoiceContinuous:
			return c.Continuous(ctx, interval)
		default:
			return nil
		}
	}
	return nil
}

// sleep waits for d or until ctx ends, reporting whether the full delay
// elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
