package model

import "time"

// Snapshot is one reading of a counter family: cumulative counters in the
// order the family declares them.
type Snapshot struct {
	Family string
	Values []uint64
}

// Equal reports whether both snapshots carry the same family and counters.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Family != o.Family || len(s.Values) != len(o.Values) {
		return false
	}
	for i := range s.Values {
		if s.Values[i] != o.Values[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share the backing array.
func (s Snapshot) Clone() Snapshot {
	v := make([]uint64, len(s.Values))
	copy(v, s.Values)
	return Snapshot{Family: s.Family, Values: v}
}

// Usage is the result of one sampler call. Available is false while the
// sampler only holds a baseline; Percent is meaningless in that case.
type Usage struct {
	Percent   float64 // 0-100
	Available bool
	// Reset marks a cycle in which a counter went backwards.
	Reset     bool
	Timestamp time.Time
}

// NotAvailable is the "no baseline yet" sentinel.
func NotAvailable(now time.Time) Usage { return Usage{Timestamp: now} }

// Memory captures RAM and swap usage in bytes for precision.
type Memory struct {
	UsedBytes  uint64
	TotalBytes uint64
	SwapUsed   uint64
	SwapTotal  uint64
	Cached     uint64
	Buffers    uint64
}

// UsedPercent returns RAM usage in percent, 0 when the total is unknown.
func (m Memory) UsedPercent() float64 { return pct(m.UsedBytes, m.TotalBytes) }

// SwapPercent returns swap usage in percent, 0 without swap.
func (m Memory) SwapPercent() float64 { return pct(m.SwapUsed, m.SwapTotal) }

// Processes summarizes scheduler activity without enumerating processes.
type Processes struct {
	Running int
	Blocked int
	Total   int
	Load1   float64
	Load5   float64
	Load15  float64
}

func pct(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) * 100 / float64(total)
}
