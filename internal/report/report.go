// Package report prints samples to the console and records them in the
// session log.
package report

import (
	"fmt"
	"io"

	"github.com/Dicklesworthstone/sysmonitor/internal/logging"
	"github.com/Dicklesworthstone/sysmonitor/internal/metrics"
	"github.com/Dicklesworthstone/sysmonitor/internal/model"
	"github.com/Dicklesworthstone/sysmonitor/internal/ui"
)

const gaugeWidth = 30

// Reporter is the sink for every sampler result. Samplers know nothing
// about formatting or where the log lives.
type Reporter struct {
	out     io.Writer
	errOut  io.Writer
	log     *Log
	metrics *metrics.Metrics
	diag    logging.Logger
}

// New creates a Reporter. log and m may be nil.
func New(out, errOut io.Writer, log *Log, m *metrics.Metrics, diag logging.Logger) *Reporter {
	if diag == nil {
		diag = logging.Nop()
	}
	return &Reporter{out: out, errOut: errOut, log: log, metrics: m, diag: diag}
}

// Event records a session event in the log only.
func (r *Reporter) Event(msg string) {
	if err := r.log.Write(msg); err != nil {
		r.diag.Warn("session log write failed", logging.Err(err))
	}
}

// Banner prints a section header followed by one line of text.
func (r *Reporter) Banner(title, line string) {
	fmt.Fprintf(r.out, "\n%s\n%s\n\n", ui.Header(title), line)
}

// Usage prints a sampler result for the metric called name.
func (r *Reporter) Usage(name string, u model.Usage) {
	r.metrics.ObserveUsage(u)
	fmt.Fprintf(r.out, "\n%s\n", ui.Header(name+" Usage"))
	switch {
	case !u.Available:
		fmt.Fprintf(r.out, "Initializing %s monitoring...\n", name)
		fmt.Fprintf(r.out, "Baseline stored; the next sample reports usage.\n\n")
		r.Event(name + " monitoring initialized")
	case u.Reset:
		fmt.Fprintf(r.out, "%s Usage: %.1f%% (counter reset, sample skipped)\n\n", name, u.Percent)
		r.Event(name + " counter reset detected")
	default:
		fmt.Fprintf(r.out, "%s Usage: %.1f%%\n", name, u.Percent)
		fmt.Fprintf(r.out, "%s\n\n", ui.GaugeBar(u.Percent, gaugeWidth))
		r.Event(fmt.Sprintf("%s Usage: %.1f%%", name, u.Percent))
	}
}

// Failure reports an abandoned sampling cycle on stderr and in the log.
func (r *Reporter) Failure(name string, err error) {
	r.metrics.ObserveError()
	fmt.Fprintf(r.errOut, "Error: %s sample failed: %v\n", name, err)
	r.Event(fmt.Sprintf("%s sample failed: %v", name, err))
}

// Memory prints an instantaneous memory reading.
func (r *Reporter) Memory(m model.Memory) {
	r.metrics.ObserveMemory(m)
	fmt.Fprintf(r.out, "\n%s\n", ui.Header("Memory Usage"))
	fmt.Fprintf(r.out, "RAM:  %s  %.1f/%.1f GiB\n",
		ui.GaugeBar(m.UsedPercent(), gaugeWidth), ui.BytesToGiB(m.UsedBytes), ui.BytesToGiB(m.TotalBytes))
	if m.SwapTotal > 0 {
		fmt.Fprintf(r.out, "Swap: %s  %.1f/%.1f GiB\n",
			ui.GaugeBar(m.SwapPercent(), gaugeWidth), ui.BytesToGiB(m.SwapUsed), ui.BytesToGiB(m.SwapTotal))
	}
	fmt.Fprintf(r.out, "Cached %.1f GiB | Buffers %.1f GiB\n\n", ui.BytesToGiB(m.Cached), ui.BytesToGiB(m.Buffers))
	r.Event(fmt.Sprintf("Memory Usage: %.1f%% (%.1f/%.1f GiB)",
		m.UsedPercent(), ui.BytesToGiB(m.UsedBytes), ui.BytesToGiB(m.TotalBytes)))
}

// Processes prints the scheduler summary.
func (r *Reporter) Processes(p model.Processes) {
	fmt.Fprintf(r.out, "\n%s\n", ui.Header("Process Summary"))
	fmt.Fprintf(r.out, "Processes: %d total, %d running, %d blocked\n", p.Total, p.Running, p.Blocked)
	fmt.Fprintf(r.out, "Load average: %.2f %.2f %.2f\n\n", p.Load1, p.Load5, p.Load15)
	r.Event(fmt.Sprintf("Processes: %d total, %d running, %d blocked", p.Total, p.Running, p.Blocked))
}

// SourceFailure reports a failed memory or process reading.
func (r *Reporter) SourceFailure(what string, err error) {
	fmt.Fprintf(r.errOut, "Error: %s unavailable: %v\n", what, err)
	r.Event(fmt.Sprintf("%s unavailable: %v", what, err))
}
