package sampler

import (
	"context"

	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	apperrors "github.com/Dicklesworthstone/sysmonitor/internal/errors"
	"github.com/Dicklesworthstone/sysmonitor/internal/model"
)

// System reads the instantaneous figures that need no baseline: memory
// occupancy and scheduler counts. Unlike CPU time these are levels, not
// cumulative counters, so they bypass UsageSampler.
type System struct {
	virtual func(context.Context) (*mem.VirtualMemoryStat, error)
	swap    func(context.Context) (*mem.SwapMemoryStat, error)
	avg     func(context.Context) (*load.AvgStat, error)
	misc    func(context.Context) (*load.MiscStat, error)
}

// NewSystem returns a System backed by gopsutil.
func NewSystem() *System {
	return &System{
		virtual: mem.VirtualMemoryWithContext,
		swap:    mem.SwapMemoryWithContext,
		avg:     load.AvgWithContext,
		misc:    load.MiscWithContext,
	}
}

// Memory reads RAM and swap usage. Swap is best effort.
func (s *System) Memory(ctx context.Context) (model.Memory, error) {
	vm, err := s.virtual(ctx)
	if err != nil || vm == nil {
		return model.Memory{}, apperrors.SourceError{Path: "virtual memory", Cause: err}
	}
	out := model.Memory{
		UsedBytes:  vm.Used,
		TotalBytes: vm.Total,
		Cached:     vm.Cached,
		Buffers:    vm.Buffers,
	}
	if sw, err := s.swap(ctx); err == nil && sw != nil {
		out.SwapUsed = sw.Used
		out.SwapTotal = sw.Total
	}
	return out, nil
}

// Processes reads scheduler counts and load averages. Load averages are
// best effort.
func (s *System) Processes(ctx context.Context) (model.Processes, error) {
	misc, err := s.misc(ctx)
	if err != nil || misc == nil {
		return model.Processes{}, apperrors.SourceError{Path: "process counts", Cause: err}
	}
	out := model.Processes{
		Running: misc.ProcsRunning,
		Blocked: misc.ProcsBlocked,
		Total:   misc.ProcsTotal,
	}
	if la, err := s.avg(ctx); err == nil && la != nil {
		out.Load1, out.Load5, out.Load15 = la.Load1, la.Load5, la.Load15
	}
	return out, nil
}
