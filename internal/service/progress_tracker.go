package service

import (
	"sync"
	"time"

	"github.com/kelaskita/timetable-engine/internal/models"
)

// progressStages is the fixed ordered list of stage labels reported over
// the lifetime of one scheduling run.
var progressStages = []string{
	"Initializing data...",
	"Creating optimization model...",
	"Generating variables...",
	"Adding constraints...",
	"Running optimization...",
	"Processing results...",
	"Finalizing schedule...",
}

// ProgressTracker holds exactly one run's progress state. A new Start
// overwrites whatever the previous run left behind; status queries racing
// with a new run may observe either state.
type ProgressTracker struct {
	mu            sync.Mutex
	progress      int
	status        models.ProgressStatus
	startTime     time.Time
	estimatedTime *float64
	currentStage  string

	now func() time.Time
}

// NewProgressTracker constructs an idle tracker.
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		status: models.ProgressIdle,
		now:    time.Now,
	}
}

// Start resets the tracker for a new run.
func (t *ProgressTracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = 0
	t.status = models.ProgressRunning
	t.startTime = t.now()
	t.estimatedTime = nil
	t.currentStage = progressStages[0]
}

// Update advances the reported percentage, clamped to 100, and optionally
// replaces the stage label. Remaining time is extrapolated from elapsed
// time once progress is above zero.
func (t *ProgressTracker) Update(progress int, stage string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if progress > 100 {
		progress = 100
	}
	t.progress = progress
	if stage != "" {
		t.currentStage = stage
	}
	if !t.startTime.IsZero() && t.progress > 0 {
		elapsed := t.now().Sub(t.startTime).Seconds()
		remaining := (elapsed / float64(t.progress)) * float64(100-t.progress)
		t.estimatedTime = &remaining
	}
}

// Finish marks the run completed at 100%.
func (t *ProgressTracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = 100
	t.status = models.ProgressCompleted
	t.currentStage = "Schedule generation completed!"
}

// Fail records an error outcome without panicking or returning one.
func (t *ProgressTracker) Fail(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = models.ProgressError
	t.currentStage = "Error: " + message
}

// Status returns a snapshot computed against the current clock. Safe to
// call concurrently with any mutator.
func (t *ProgressTracker) Status() models.ProgressSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	var elapsed float64
	if !t.startTime.IsZero() {
		elapsed = t.now().Sub(t.startTime).Seconds()
	}

	var estimated *float64
	if t.estimatedTime != nil {
		v := *t.estimatedTime
		estimated = &v
	}

	stages := make([]string, len(progressStages))
	copy(stages, progressStages)

	return models.ProgressSnapshot{
		Progress:      t.progress,
		Status:        t.status,
		CurrentStage:  t.currentStage,
		ElapsedTime:   elapsed,
		EstimatedTime: estimated,
		Stages:        stages,
	}
}
