//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

package sampler

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"

	apperrors "github.com/Dicklesworthstone/sysmonitor/internal/errors"
)

// Source kinds accepted by NewSource.
const (
	SourceProcfs   = "procfs"
	SourceGopsutil = "gopsutil"
)

// DefaultStatPath is the Linux aggregate counter file.
const DefaultStatPath = "/proc/stat"

// userHZ is the kernel's USER_HZ, the tick unit of /proc/stat.
const userHZ = 100

// Source reads one textual snapshot of kernel counters.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
}

// FileSystem abstracts file reads so sources can be tested without procfs.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
}

// OSFileSystem reads from the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// FileSource reads a /proc/stat formatted file.
type FileSource struct {
	Path string
	fs   FileSystem
}

// NewFileSource returns a source reading path through the OS filesystem.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path, fs: OSFileSystem{}}
}

// NewFileSourceWithFS returns a source reading path through fs.
func NewFileSourceWithFS(path string, fs FileSystem) *FileSource {
	return &FileSource{Path: path, fs: fs}
}

func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.fs.ReadFile(s.Path)
	if err != nil {
		return nil, apperrors.SourceError{Path: s.Path, Cause: err}
	}
	return data, nil
}

// GopsutilSource renders gopsutil's aggregate CPU times as a /proc/stat
// line, for hosts without a readable procfs.
type GopsutilSource struct {
	times func(ctx context.Context, percpu bool) ([]cpu.TimesStat, error)
}

// NewGopsutilSource returns a source backed by gopsutil.
func NewGopsutilSource() *GopsutilSource {
	return &GopsutilSource{times: cpu.TimesWithContext}
}

func (s *GopsutilSource) Read(ctx context.Context) ([]byte, error) {
	times, err := s.times(ctx, false)
	if err != nil {
		return nil, apperrors.SourceError{Path: "gopsutil cpu times", Cause: err}
	}
	if len(times) == 0 {
		return nil, apperrors.SourceError{Path: "gopsutil cpu times"}
	}
	t := times[0]
	var b strings.Builder
	fmt.Fprintf(&b, "cpu  %d %d %d %d %d %d %d %d\n",
		ticks(t.User), ticks(t.Nice), ticks(t.System), ticks(t.Idle),
		ticks(t.Iowait), ticks(t.Irq), ticks(t.Softirq), ticks(t.Steal))
	return []byte(b.String()), nil
}

// ticks converts seconds back to USER_HZ ticks.
func ticks(seconds float64) uint64 {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return uint64(math.Round(seconds * userHZ))
}

// NewSource builds the source named by kind.
func NewSource(kind, statPath string) (Source, error) {
	switch kind {
	case "", SourceProcfs:
		if statPath == "" {
			statPath = DefaultStatPath
		}
		return NewFileSource(statPath), nil
	case SourceGopsutil:
		return NewGopsutilSource(), nil
	default:
		return nil, apperrors.NewConfigError("unknown counter source %q (want %s or %s)", kind, SourceProcfs, SourceGopsutil)
	}
}
