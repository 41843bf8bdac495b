package sampler

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/Dicklesworthstone/sysmonitor/internal/errors"
)

const procStat = `cpu  10132153 290696 3084719 46828483 16683 0 25195 0 175628 0
cpu0 1393280 32966 572056 13343292 6130 0 17875 0 23933 0
cpu1 1335559 32979 513394 13311917 4124 0 4114 0 28543 0
intr 199292578 42 0 0 0 0 0 0 0 1 0 0 0 0 0 0
ctxt 385374622
btime 1700000000
processes 1238822
procs_running 2
procs_blocked 0
`

func TestParse_ProcStat(t *testing.T) {
	snap, err := Parse([]byte(procStat), CPUFamily)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []uint64{10132153, 290696, 3084719, 46828483, 16683, 0, 25195}
	if snap.Family != "cpu" {
		t.Errorf("Family = %q, want cpu", snap.Family)
	}
	if len(snap.Values) != len(want) {
		t.Fatalf("got %d values, want %d", len(snap.Values), len(want))
	}
	for i := range want {
		if snap.Values[i] != want[i] {
			t.Errorf("Values[%d] = %d, want %d", i, snap.Values[i], want[i])
		}
	}
}

func TestParse_IgnoresPerCoreLines(t *testing.T) {
	text := "cpu0 1 1 1 1 1 1 1\ncpu  9 8 7 6 5 4 3\n"
	snap, err := Parse([]byte(text), CPUFamily)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if snap.Values[0] != 9 || snap.Values[6] != 3 {
		t.Errorf("parsed the wrong line: %v", snap.Values)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantErr  error
		contains string
	}{
		{
			name:     "empty text",
			text:     "",
			wantErr:  apperrors.ErrSourceUnavailable,
			contains: `no "cpu" line`,
		},
		{
			name:     "only per-core lines",
			text:     "cpu0 1 2 3 4 5 6 7\nintr 5\n",
			wantErr:  apperrors.ErrSourceUnavailable,
			contains: `no "cpu" line`,
		},
		{
			name:     "too few fields",
			text:     "cpu  1 2 3\n",
			wantErr:  apperrors.ErrMalformedData,
			contains: "expected 7 fields, got 3",
		},
		{
			name:     "non-numeric field",
			text:     "cpu  1 2 3 four 5 6 7\n",
			wantErr:  apperrors.ErrMalformedData,
			contains: "field 4 (idle)",
		},
		{
			name:     "negative field",
			text:     "cpu  1 2 3 4 -5 6 7\n",
			wantErr:  apperrors.ErrMalformedData,
			contains: "field 5 (iowait)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.text), CPUFamily)
			if err == nil {
				t.Fatal("Parse() expected error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v should match %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.contains)
			}
		})
	}
}

func TestParse_CustomFamily(t *testing.T) {
	fam := Family{Name: "Pages", Prefix: "page", Fields: []string{"in", "out"}, Idle: 0}
	snap, err := Parse([]byte("page 5741 1808\nswap 1 0\n"), fam)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if snap.Family != "page" || snap.Values[0] != 5741 || snap.Values[1] != 1808 {
		t.Errorf("Parse() = %+v", snap)
	}
}

func TestParse_LongUnrelatedLine(t *testing.T) {
	text := "intr " + strings.Repeat("0 ", 40000) + "\ncpu  100 0 50 800 10 0 0\nctxt 385374622\n"

	snap, err := Parse([]byte(text), CPUFamily)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if snap.Values[0] != 100 || snap.Values[3] != 800 {
		t.Errorf("Parse() = %+v", snap)
	}

	ctxt := Family{Name: "Context switches", Prefix: "ctxt", Fields: []string{"switches"}, Idle: 0}
	snap, err = Parse([]byte(text), ctxt)
	if err != nil {
		t.Fatalf("Parse(ctxt) error = %v", err)
	}
	if snap.Values[0] != 385374622 {
		t.Errorf("Parse(ctxt) = %+v", snap)
	}
}
