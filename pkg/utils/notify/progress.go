package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/3bit-techs/vvpctl/pkg/utils/timer"
	fcolor "github.com/fatih/color"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// ProgressLabels are the status words shown for each task state.
type ProgressLabels struct {
	Pending   string
	Running   string
	Completed string
}

// DefaultLabels returns pending / running / completed.
func DefaultLabels() ProgressLabels {
	return ProgressLabels{Pending: "pending", Running: "running", Completed: "completed"}
}

// ApplyingLabels returns labels for apply tasks.
func ApplyingLabels() ProgressLabels {
	return ProgressLabels{Pending: "pending", Running: "applying", Completed: "applied"}
}

// DeletingLabels returns labels for delete tasks.
func DeletingLabels() ProgressLabels {
	return ProgressLabels{Pending: "pending", Running: "deleting", Completed: "deleted"}
}

// ProgressTask is a named unit of work.
type ProgressTask struct {
	// Name is shown in the status line, usually a deployment identity.
	Name string
	Fn   func(ctx context.Context) error
}

type taskState int

const (
	taskPending taskState = iota
	taskRunning
	taskComplete
	taskFailed
)

const spinnerTickInterval = 100 * time.Millisecond

func spinnerFrames() []string {
	return []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
}

// ProgressGroup runs tasks in parallel and reports their state.
//
// On a terminal the task lines are redrawn in place with a spinner. Elsewhere
// only state changes are printed. A failing task does not stop the others;
// Run returns the errors of all failed tasks.
type ProgressGroup struct {
	title       string
	emoji       string
	labels      ProgressLabels
	writer      io.Writer
	timer       timer.Timer
	concurrency int
	isTTY       bool

	mu          sync.Mutex
	states      map[string]taskState
	order       []string
	started     []string
	spinnerIdx  int
	linesDrawn  int
	stopSpinner chan struct{}
	spinnerDone chan struct{}
}

// ProgressOption configures a ProgressGroup.
type ProgressOption func(*ProgressGroup)

// WithLabels sets the status words.
func WithLabels(labels ProgressLabels) ProgressOption {
	return func(pg *ProgressGroup) {
		pg.labels = labels
	}
}

// WithTimer prints the timing of tmr after all tasks succeed.
func WithTimer(tmr timer.Timer) ProgressOption {
	return func(pg *ProgressGroup) {
		pg.timer = tmr
	}
}

// WithConcurrency limits how many tasks run at once. Values below 1 mean no limit.
func WithConcurrency(limit int) ProgressOption {
	return func(pg *ProgressGroup) {
		pg.concurrency = limit
	}
}

// NewProgressGroup creates a group printing to writer (os.Stdout when nil).
func NewProgressGroup(title, emoji string, writer io.Writer, opts ...ProgressOption) *ProgressGroup {
	if writer == nil {
		writer = os.Stdout
	}

	if emoji == "" {
		emoji = "►"
	}

	isTTY := false
	if file, ok := writer.(*os.File); ok {
		isTTY = term.IsTerminal(int(file.Fd()))
	}

	group := &ProgressGroup{
		title:       title,
		emoji:       emoji,
		labels:      DefaultLabels(),
		writer:      writer,
		isTTY:       isTTY,
		states:      map[string]taskState{},
		stopSpinner: make(chan struct{}),
		spinnerDone: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(group)
	}

	return group
}

// Run executes tasks and waits for all of them.
func (pg *ProgressGroup) Run(ctx context.Context, tasks ...ProgressTask) error {
	if len(tasks) == 0 {
		return nil
	}

	for _, task := range tasks {
		pg.states[task.Name] = taskPending
		pg.order = append(pg.order, task.Name)
	}

	if pg.timer != nil {
		pg.timer.NewStage()
	}

	_, _ = fmt.Fprintf(pg.writer, "%s %s...\n", pg.emoji, pg.title)

	if pg.isTTY {
		pg.drawLines()

		go pg.spin()
	}

	errs := make([]error, len(tasks))

	var group errgroup.Group
	if pg.concurrency > 0 {
		group.SetLimit(pg.concurrency)
	}

	for index, task := range tasks {
		group.Go(func() error {
			pg.transition(task.Name, taskRunning)

			err := task.Fn(ctx)
			if err != nil {
				errs[index] = fmt.Errorf("%s: %w", task.Name, err)

				pg.transition(task.Name, taskFailed)

				return nil
			}

			pg.transition(task.Name, taskComplete)

			return nil
		})
	}

	_ = group.Wait()

	if pg.isTTY {
		close(pg.stopSpinner)
		<-pg.spinnerDone
		pg.redrawLines()
	}

	err := errors.Join(errs...)
	if err == nil && pg.timer != nil {
		total, stage := pg.timer.GetTiming()
		green := fcolor.New(fcolor.FgGreen)
		_, _ = green.Fprintf(pg.writer, "⏲ current: %s\n", stage.String())
		_, _ = green.Fprintf(pg.writer, "  total:  %s\n", total.String())
	}

	return err
}

// transition records a state change and prints it when not on a terminal.
func (pg *ProgressGroup) transition(name string, state taskState) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if state == taskRunning && pg.states[name] == taskPending {
		pg.started = append(pg.started, name)
	}

	pg.states[name] = state

	if pg.isTTY {
		return
	}

	switch state {
	case taskRunning:
		_, _ = fmt.Fprintf(pg.writer, "► %s %s\n", name, pg.labels.Running)
	case taskComplete:
		_, _ = fcolor.New(fcolor.FgGreen).Fprintf(pg.writer, "✔ %s %s\n", name, pg.labels.Completed)
	case taskFailed:
		_, _ = fcolor.New(fcolor.FgRed).Fprintf(pg.writer, "✗ %s failed\n", name)
	case taskPending:
	}
}

func (pg *ProgressGroup) spin() {
	defer close(pg.spinnerDone)

	ticker := time.NewTicker(spinnerTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pg.stopSpinner:
			return
		case <-ticker.C:
			pg.mu.Lock()
			pg.spinnerIdx = (pg.spinnerIdx + 1) % len(spinnerFrames())
			pg.mu.Unlock()
			pg.redrawLines()
		}
	}
}

func (pg *ProgressGroup) drawLines() {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	for _, name := range pg.order {
		_, _ = fmt.Fprintln(pg.writer, pg.line(name))
	}

	pg.linesDrawn = len(pg.order)
}

// redrawLines moves the cursor up and prints started tasks first, then
// pending ones.
func (pg *ProgressGroup) redrawLines() {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	if pg.linesDrawn == 0 {
		return
	}

	_, _ = fmt.Fprintf(pg.writer, "\033[%dA", pg.linesDrawn)

	started := make(map[string]bool, len(pg.started))
	for _, name := range pg.started {
		started[name] = true
	}

	display := append([]string{}, pg.started...)

	for _, name := range pg.order {
		if !started[name] {
			display = append(display, name)
		}
	}

	for _, name := range display {
		_, _ = fmt.Fprint(pg.writer, "\033[K")
		_, _ = fmt.Fprintln(pg.writer, pg.line(name))
	}
}

func (pg *ProgressGroup) line(name string) string {
	switch pg.states[name] {
	case taskPending:
		return fcolor.New(fcolor.FgHiBlack).Sprintf("○ %s %s", name, pg.labels.Pending)
	case taskRunning:
		return fcolor.New(fcolor.FgCyan).Sprintf("%s %s %s", spinnerFrames()[pg.spinnerIdx], name, pg.labels.Running)
	case taskComplete:
		return fcolor.New(fcolor.FgGreen).Sprintf("✔ %s %s", name, pg.labels.Completed)
	case taskFailed:
		return fcolor.New(fcolor.FgRed).Sprintf("✗ %s failed", name)
	default:
		return "? " + name
	}
}
