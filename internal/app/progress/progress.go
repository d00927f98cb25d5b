package progress

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Config controls whether spinners are drawn and where.
type Config struct {
	Enabled bool
	Writer  io.Writer
}

// Manager owns the mpb container that spinners render into.
type Manager struct {
	progress *mpb.Progress
	enabled  bool
	waitOnce sync.Once
}

// Spinner tracks one long-running step.
type Spinner struct {
	bar     *mpb.Bar
	enabled bool
}

func NewManager(config Config) *Manager {
	if !config.Enabled {
		return &Manager{enabled: false}
	}

	writer := config.Writer
	if writer == nil {
		writer = os.Stderr
	}

	return &Manager{
		progress: mpb.New(
			mpb.WithOutput(writer),
			mpb.WithRefreshRate(120*time.Millisecond),
		),
		enabled: true,
	}
}

// Start draws a spinner labelled message until Done or Fail is called.
func (m *Manager) Start(message string) *Spinner {
	if !m.enabled {
		return &Spinner{enabled: false}
	}

	bar := m.progress.AddSpinner(1,
		mpb.PrependDecorators(
			decor.Name(message, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.OnAbort(
				decor.OnComplete(decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace), "done"),
				"failed",
			),
		),
	)
	return &Spinner{bar: bar, enabled: true}
}

// Done marks the step finished.
func (s *Spinner) Done() {
	if !s.enabled || s.bar == nil {
		return
	}
	s.bar.SetCurrent(1)
}

// Fail stops the spinner and leaves the line in place.
func (s *Spinner) Fail() {
	if !s.enabled || s.bar == nil {
		return
	}
	s.bar.Abort(false)
}

// Finish marks the step as done or failed based on err.
func (s *Spinner) Finish(err error) {
	if err != nil {
		s.Fail()
		return
	}
	s.Done()
}

// Wait flushes every spinner and stops rendering. Later calls are no-ops.
func (m *Manager) Wait() {
	if !m.enabled || m.progress == nil {
		return
	}
	m.waitOnce.Do(m.progress.Wait)
}

func (m *Manager) Enabled() bool {
	return m.enabled
}

func IsTTY(writer io.Writer) bool {
	if f, ok := writer.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ShouldShow reports whether spinners belong on stderr.
func ShouldShow(forced bool) bool {
	if forced {
		return true
	}
	return IsTTY(os.Stderr)
}
