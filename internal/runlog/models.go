package runlog

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one recorded filter invocation.
type Run struct {
	ID         string
	InputPath  string
	OutputPath string
	Status     Status
	Validators []string
	Total      int
	Kept       int
	Dropped    int
	Errored    int
	// Rejections counts dropped rows by the validator that rejected them.
	// Only populated by Get.
	Rejections   map[string]int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns the wall time of a finished run, or zero.
func (r *Run) Duration() time.Duration {
	if r == nil || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary carries the outcome of a completed run.
type Summary struct {
	Total      int
	Kept       int
	Dropped    int
	Errored    int
	Rejections map[string]int
}

// NewRunID returns a random run identifier.
func NewRunID() string {
	return uuid.NewString()
}
