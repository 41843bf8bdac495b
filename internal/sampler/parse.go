package sampler

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	apperrors "github.com/Dicklesworthstone/sysmonitor/internal/errors"
	"github.com/Dicklesworthstone/sysmonitor/internal/model"
)

// Family describes a group of cumulative counters published on one line of
// a /proc/stat style file.
type Family struct {
	// Name is the human-readable metric name ("CPU").
	Name string
	// Prefix is the first token of the counter line ("cpu").
	Prefix string
	// Fields names the counters read after the prefix, in order.
	Fields []string
	// Idle is the index in Fields of the counter that measures time not
	// spent working.
	Idle int
}

// CPUFamily is the aggregate CPU line of /proc/stat. Later kernels append
// steal/guest columns; only the first seven are used.
var CPUFamily = Family{
	Name:   "CPU",
	Prefix: "cpu",
	Fields: []string{"user", "nice", "system", "idle", "iowait", "irq", "softirq"},
	Idle:   3,
}

// Parse extracts the family's counters from raw counter text. The text may
// contain any number of unrelated lines. A missing family line is reported
// as ErrSourceUnavailable; a short or unparsable line as ErrMalformedData.
func Parse(text []byte, fam Family) (model.Snapshot, error) {
	sc := bufio.NewScanner(bytes.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	for sc.Scan() {
		fields := bytes.Fields(sc.Bytes())
		if len(fields) == 0 || string(fields[0]) != fam.Prefix {
			continue
		}
		return parseLine(fields[1:], fam)
	}
	if err := sc.Err(); err != nil {
		return model.Snapshot{}, apperrors.MalformedDataError{Family: fam.Prefix, Reason: err.Error()}
	}
	return model.Snapshot{}, errors.Wrapf(apperrors.ErrSourceUnavailable, "no %q line in counter text", fam.Prefix)
}

func parseLine(raw [][]byte, fam Family) (model.Snapshot, error) {
	n := len(fam.Fields)
	if len(raw) < n {
		return model.Snapshot{}, apperrors.MalformedDataError{
			Family: fam.Prefix,
			Reason: fmt.Sprintf("expected %d fields, got %d", n, len(raw)),
		}
	}
	values := make([]uint64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseUint(string(raw[i]), 10, 64)
		if err != nil {
			return model.Snapshot{}, apperrors.MalformedDataError{
				Family: fam.Prefix,
				Reason: fmt.Sprintf("field %d (%s): %q is not a counter", i+1, fam.Fields[i], raw[i]),
			}
		}
		values[i] = v
	}
	return model.Snapshot{Family: fam.Prefix, Values: values}, nil
}
