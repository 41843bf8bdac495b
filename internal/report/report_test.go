package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/Dicklesworthstone/sysmonitor/internal/errors"
	"github.com/Dicklesworthstone/sysmonitor/internal/model"
	"github.com/Dicklesworthstone/sysmonitor/internal/ui"
)

var fixedNow = func() time.Time { return time.Date(2026, 10, 19, 14, 5, 9, 0, time.Local) }

func newTestReporter() (*Reporter, *bytes.Buffer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut, logBuf bytes.Buffer
	r := New(&out, &errOut, NewLog(&logBuf, fixedNow), nil, nil)
	return r, &out, &errOut, &logBuf
}

func TestLog_Format(t *testing.T) {
	var buf bytes.Buffer
	l := NewLog(&buf, fixedNow)
	if err := l.Write("Session started"); err != nil {
		t.Fatal(err)
	}
	if err := l.Write("CPU Usage: 61.5%"); err != nil {
		t.Fatal(err)
	}
	want := "[2026-10-19 14:05:09] Session started\n[2026-10-19 14:05:09] CPU Usage: 61.5%\n"
	if buf.String() != want {
		t.Errorf("log =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestLog_AppendsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syslog.txt")
	for _, msg := range []string{"first", "second"} {
		l, err := OpenLog(path)
		if err != nil {
			t.Fatalf("OpenLog() error = %v", err)
		}
		if err := l.Write(msg); err != nil {
			t.Fatal(err)
		}
		if err := l.Close(); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], "] first") || !strings.HasSuffix(lines[1], "] second") {
		t.Errorf("unexpected log contents: %q", data)
	}
}

func TestLog_WriteIsVisibleBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syslog.txt")
	l, err := OpenLog(path)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	_ = l.Write("Session started")
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "Session started") {
		t.Error("write should reach the file immediately")
	}
}

func TestLog_OpenFailure(t *testing.T) {
	_, err := OpenLog(filepath.Join(t.TempDir(), "missing", "dir", "log.txt"))
	if err == nil || !strings.Contains(err.Error(), "open log") {
		t.Errorf("expected open error, got %v", err)
	}
}

func TestLog_NilAndClosed(t *testing.T) {
	var l *Log
	if err := l.Write("dropped"); err != nil {
		t.Errorf("nil Write() = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("nil Close() = %v", err)
	}

	var buf bytes.Buffer
	l = NewLog(&buf, fixedNow)
	_ = l.Close()
	_ = l.Write("after close")
	if buf.Len() != 0 {
		t.Errorf("write after Close should be dropped, got %q", buf.String())
	}
}

func TestReporter_Usage(t *testing.T) {
	tests := []struct {
		name    string
		usage   model.Usage
		console []string
		logLine string
	}{
		{
			name:    "sentinel",
			usage:   model.Usage{},
			console: []string{"=== CPU Usage ===", "Initializing CPU monitoring..."},
			logLine: "[2026-10-19 14:05:09] CPU monitoring initialized\n",
		},
		{
			name:    "value",
			usage:   model.Usage{Percent: 61.538, Available: true},
			console: []string{"=== CPU Usage ===", "CPU Usage: 61.5%", ui.GaugeBar(61.538, gaugeWidth)},
			logLine: "[2026-10-19 14:05:09] CPU Usage: 61.5%\n",
		},
		{
			name:    "reset",
			usage:   model.Usage{Available: true, Reset: true},
			console: []string{"CPU Usage: 0.0%", "counter reset"},
			logLine: "[2026-10-19 14:05:09] CPU counter reset detected\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out, _, logBuf := newTestReporter()
			r.Usage("CPU", tt.usage)
			for _, want := range tt.console {
				if !strings.Contains(out.String(), want) {
					t.Errorf("console should contain %q, got:\n%s", want, out.String())
				}
			}
			if logBuf.String() != tt.logLine {
				t.Errorf("log = %q, want %q", logBuf.String(), tt.logLine)
			}
		})
	}
}

func TestReporter_Failure(t *testing.T) {
	r, out, errOut, logBuf := newTestReporter()
	r.Failure("CPU", apperrors.SourceError{Path: "/proc/stat", Cause: errors.New("permission denied")})

	if out.Len() != 0 {
		t.Errorf("failures must not go to stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "CPU sample failed") || !strings.Contains(errOut.String(), "permission denied") {
		t.Errorf("stderr = %q", errOut.String())
	}
	if !strings.Contains(logBuf.String(), "] CPU sample failed: counter source unavailable: /proc/stat") {
		t.Errorf("log = %q", logBuf.String())
	}
}

func TestReporter_Memory(t *testing.T) {
	r, out, _, logBuf := newTestReporter()
	r.Memory(model.Memory{UsedBytes: 2 << 30, TotalBytes: 8 << 30, SwapUsed: 1 << 30, SwapTotal: 4 << 30})
	for _, want := range []string{"=== Memory Usage ===", "RAM:", "2.0/8.0 GiB", "Swap:", "1.0/4.0 GiB"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("console should contain %q, got:\n%s", want, out.String())
		}
	}
	if !strings.Contains(logBuf.String(), "Memory Usage: 25.0% (2.0/8.0 GiB)") {
		t.Errorf("log = %q", logBuf.String())
	}
}

func TestReporter_Processes(t *testing.T) {
	r, out, _, logBuf := newTestReporter()
	r.Processes(model.Processes{Running: 2, Blocked: 0, Total: 310, Load1: 0.42, Load5: 0.3, Load15: 0.2})
	if !strings.Contains(out.String(), "Processes: 310 total, 2 running, 0 blocked") ||
		!strings.Contains(out.String(), "Load average: 0.42 0.30 0.20") {
		t.Errorf("console = %q", out.String())
	}
	if !strings.Contains(logBuf.String(), "Processes: 310 total") {
		t.Errorf("log = %q", logBuf.String())
	}
}

func TestReporter_NilLog(t *testing.T) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut, nil, nil, nil)
	r.Usage("CPU", model.Usage{Percent: 10, Available: true})
	r.Event("Session ended")
	if !strings.Contains(out.String(), "CPU Usage: 10.0%") {
		t.Errorf("console = %q", out.String())
	}
}
