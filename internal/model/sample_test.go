package model

import (
	"testing"
	"time"
)

func TestSnapshotEqual(t *testing.T) {
	a := Snapshot{Family: "cpu", Values: []uint64{1, 2, 3}}
	tests := []struct {
		name string
		b    Snapshot
		want bool
	}{
		{"identical", Snapshot{Family: "cpu", Values: []uint64{1, 2, 3}}, true},
		{"different value", Snapshot{Family: "cpu", Values: []uint64{1, 2, 4}}, false},
		{"different arity", Snapshot{Family: "cpu", Values: []uint64{1, 2}}, false},
		{"different family", Snapshot{Family: "intr", Values: []uint64{1, 2, 3}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotClone(t *testing.T) {
	a := Snapshot{Family: "cpu", Values: []uint64{1, 2, 3}}
	b := a.Clone()
	b.Values[0] = 99
	if a.Values[0] != 1 {
		t.Error("Clone must not share the backing array")
	}
}

func TestNotAvailable(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	u := NotAvailable(now)
	if u.Available || u.Percent != 0 || !u.Timestamp.Equal(now) {
		t.Errorf("NotAvailable() = %+v", u)
	}
}

func TestMemoryPercents(t *testing.T) {
	m := Memory{UsedBytes: 1 << 30, TotalBytes: 4 << 30}
	if got := m.UsedPercent(); got != 25 {
		t.Errorf("UsedPercent() = %v, want 25", got)
	}
	if got := m.SwapPercent(); got != 0 {
		t.Errorf("SwapPercent() without swap = %v, want 0", got)
	}
}
