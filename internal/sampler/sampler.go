package sampler

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/Dicklesworthstone/sysmonitor/internal/errors"
	"github.com/Dicklesworthstone/sysmonitor/internal/logging"
	"github.com/Dicklesworthstone/sysmonitor/internal/model"
)

// UsageSampler turns successive snapshots of one cumulative counter family
// into a busy percentage. It keeps the previous snapshot as its baseline:
// the first successful sample only stores it, every later one diffs against
// it and then replaces it.
//
// A UsageSampler is not safe for concurrent use. Each family gets its own.
type UsageSampler struct {
	family Family
	source Source
	log    logging.Logger
	now    func() time.Time

	baseline    model.Snapshot
	hasBaseline bool
}

// Option configures a UsageSampler.
type Option func(*UsageSampler)

// WithLogger sets the diagnostic logger.
func WithLogger(l logging.Logger) Option {
	return func(s *UsageSampler) { s.log = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *UsageSampler) { s.now = now }
}

// New returns an uninitialized sampler for family reading from source.
// source may be nil when snapshots are only fed through Sample.
func New(family Family, source Source, opts ...Option) *UsageSampler {
	s := &UsageSampler{
		family: family,
		source: source,
		log:    logging.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Family returns the counter family this sampler tracks.
func (s *UsageSampler) Family() Family { return s.family }

// Ready reports whether a baseline is held.
func (s *UsageSampler) Ready() bool { return s.hasBaseline }

// Baseline returns a copy of the stored baseline.
func (s *UsageSampler) Baseline() (model.Snapshot, bool) {
	if !s.hasBaseline {
		return model.Snapshot{}, false
	}
	return s.baseline.Clone(), true
}

// Reset drops the baseline; the next sample bootstraps again.
func (s *UsageSampler) Reset() {
	s.baseline = model.Snapshot{}
	s.hasBaseline = false
}

// Collect reads the source, parses the family line and samples it. On any
// error the baseline is left exactly as it was.
func (s *UsageSampler) Collect(ctx context.Context) (model.Usage, error) {
	if s.source == nil {
		return model.Usage{}, apperrors.SourceError{Path: "no source configured"}
	}
	raw, err := s.source.Read(ctx)
	if err != nil {
		return model.Usage{}, errors.Wrapf(err, "read %s counters", s.family.Name)
	}
	snap, err := Parse(raw, s.family)
	if err != nil {
		return model.Usage{}, errors.Wrapf(err, "parse %s counters", s.family.Name)
	}
	return s.Sample(snap)
}

// Sample feeds one snapshot into the state machine.
//
// Without a baseline the snapshot is stored and the NotAvailable sentinel is
// returned. Otherwise the busy share of the elapsed ticks is returned:
//
//	100 * (1 - idleDelta/totalDelta)
//
// Identical snapshots give 0. If any counter went backwards (kernel reset or
// wrap) the cycle reports 0 with Reset set, and the new snapshot becomes
// the baseline.
func (s *UsageSampler) Sample(snap model.Snapshot) (model.Usage, error) {
	now := s.now()
	if len(snap.Values) != len(s.family.Fields) {
		return model.Usage{}, apperrors.MalformedDataError{
			Family: s.family.Prefix,
			Reason: fmt.Sprintf("snapshot has %d counters, family has %d", len(snap.Values), len(s.family.Fields)),
		}
	}

	if !s.hasBaseline {
		s.store(snap)
		s.log.Debug("baseline stored", logging.String("family", s.family.Prefix))
		return model.NotAvailable(now), nil
	}

	percent, reset := usagePercent(s.baseline.Values, snap.Values, s.family.Idle)
	s.store(snap)
	if reset {
		s.log.Warn("counter reset detected", logging.String("family", s.family.Prefix))
	}
	return model.Usage{Percent: percent, Available: true, Reset: reset, Timestamp: now}, nil
}

func (s *UsageSampler) store(snap model.Snapshot) {
	s.baseline = snap.Clone()
	s.baseline.Family = s.family.Prefix
	s.hasBaseline = true
}

// usagePercent computes the busy percentage between two counter tuples of
// equal length. reset is true when a counter decreased or the deltas do not
// fit in a uint64; the percentage is 0 in that case.
func usagePercent(prev, cur []uint64, idle int) (percent float64, reset bool) {
	var total, idleDelta uint64
	for i := range cur {
		if cur[i] < prev[i] {
			return 0, true
		}
		d := cur[i] - prev[i]
		if d > math.MaxUint64-total {
			return 0, true
		}
		total += d
		if i == idle {
			idleDelta = d
		}
	}
	if total == 0 {
		return 0, false
	}
	percent = 100 * (1 - float64(idleDelta)/float64(total))
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	return percent, false
}
