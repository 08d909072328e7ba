// Package timer tracks elapsed time across the stages of a command.
package timer

import (
	"sync"
	"time"
)

// Timer measures the total duration of a command and of its current stage.
type Timer interface {
	// Start begins timing. Calling Start again restarts the timer.
	Start()
	// NewStage marks the beginning of a new stage.
	NewStage()
	// GetTiming returns the total elapsed time and the time spent in the current stage.
	GetTiming() (time.Duration, time.Duration)
	// Stop freezes the timer.
	Stop()
}

type timer struct {
	mu         sync.Mutex
	now        func() time.Time
	start      time.Time
	stageStart time.Time
	stopped    time.Time
}

// New creates a Timer. Call Start before reading timings.
func New() Timer {
	return &timer{now: time.Now}
}

// NewWithClock creates a Timer that reads time from now.
func NewWithClock(now func() time.Time) Timer {
	return &timer{now: now}
}

func (t *timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.start = t.now()
	t.stageStart = t.start
	t.stopped = time.Time{}
}

func (t *timer) NewStage() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stageStart = t.now()
}

func (t *timer) GetTiming() (time.Duration, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() {
		return 0, 0
	}

	end := t.stopped
	if end.IsZero() {
		end = t.now()
	}

	return end.Sub(t.start), end.Sub(t.stageStart)
}

func (t *timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped.IsZero() {
		t.stopped = t.now()
	}
}
