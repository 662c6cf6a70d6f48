// Package progress renders per-row progress bars for a batch run.
package progress

import (
	"fmt"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Tracker tracks progress for a single input row.
type Tracker interface {
	SetStage(stage string)
	SetPatients(current, total int)
	Done(status string)
}

// Manager creates trackers for individual rows.
type Manager interface {
	NewTracker(index, total int, label string) Tracker
	Wait()
}

// MPBManager implements Manager using the mpb multi-progress-bar library.
type MPBManager struct {
	container *mpb.Progress
}

// NewMPBManager creates a new mpb-based progress manager.
func NewMPBManager() *MPBManager {
	return &MPBManager{container: mpb.New(mpb.WithWidth(48))}
}

// NewTracker creates a progress tracker for one row.
func (m *MPBManager) NewTracker(index, total int, label string) Tracker {
	stageVal := &atomic.Value{}
	stageVal.Store("")
	bar := m.container.AddBar(1,
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("[%d/%d] %s ", index+1, total, label), decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				return stageVal.Load().(string)
			}),
		),
	)
	return &mpbTracker{bar: bar, stagePtr: stageVal}
}

// Wait waits for all bars to finish rendering.
func (m *MPBManager) Wait() {
	m.container.Wait()
}

type mpbTracker struct {
	bar      *mpb.Bar
	stagePtr *atomic.Value
}

func (t *mpbTracker) SetStage(stage string) {
	t.stagePtr.Store(stage)
}

func (t *mpbTracker) SetPatients(current, total int) {
	t.stagePtr.Store(fmt.Sprintf("patient %d/%d", current, total))
	if total > 0 {
		t.bar.SetTotal(int64(total), false)
		t.bar.SetCurrent(int64(current))
	}
}

func (t *mpbTracker) Done(status string) {
	t.stagePtr.Store(status)
	t.bar.SetTotal(-1, true)
}

// Noop is a Manager that renders nothing; used by tests and dry runs.
type Noop struct{}

func (Noop) NewTracker(int, int, string) Tracker { return noopTracker{} }
func (Noop) Wait()                               {}

type noopTracker struct{}

func (noopTracker) SetStage(string)      {}
func (noopTracker) SetPatients(int, int) {}
func (noopTracker) Done(string)          {}
