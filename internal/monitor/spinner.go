package monitor

import (
	"io"
	"time"

	"github.com/briandowns/spinner"
)

const spinnerRefresh = 100 * time.Millisecond

// Spinner is the wait indicator shown during the one-shot delay.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(w io.Writer) Spinner {
	s := spinner.New(spinner.CharSets[11], spinnerRefresh, spinner.WithWriter(w))
	return &realSpinner{s}
}
