package batch

import (
	"errors"
	"time"

	"github.com/JokerFrankZ/convert-videos/internal/config"
)

// ErrCancelled marks a job or batch stopped by user request. It is reported
// distinctly from encode failures: a cancelled job is not a failed one.
var ErrCancelled = errors.New("cancelled by user")

// Status is the terminal outcome of one job.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// State is the batch lifecycle. Paused is a facet of the control signal,
// not a separate state: a paused batch is still StateRunning.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// JobResult is the terminal outcome of one planned job. Exactly one is
// produced per job, even on cancellation.
type JobResult struct {
	Index      int
	InputPath  string
	Format     config.Format
	Status     Status
	Err        error         // nil on success; ErrCancelled, *probe.Error or *ffmpeg.EncodeError otherwise
	OutputPath string        // Set when the job produced (or may have partially produced) output.
	Elapsed    time.Duration // Zero for jobs that never started.
}

// Result is the outcome of the whole batch: one JobResult per planned job
// in planned order, plus aggregate counts.
type Result struct {
	BatchID   string
	Jobs      []JobResult
	Succeeded int
	Failed    int
	Cancelled int

	// Interrupted is set when the batch ended by cancellation rather than
	// running every job to a natural terminal state.
	Interrupted bool

	Elapsed time.Duration
}

func (r *Result) count(jr JobResult) {
	switch jr.Status {
	case StatusSucceeded:
		r.Succeeded++
	case StatusFailed:
		r.Failed++
	case StatusCancelled:
		r.Cancelled++
	}
}

// ProgressEvent is a transient notification emitted during execution. It is
// never persisted; sinks must not block for long, as events are delivered
// synchronously from the batch worker.
type ProgressEvent struct {
	BatchID   string
	JobIndex  int
	TotalJobs int
	InputPath string
	Format    config.Format

	// Fraction is the current job's completion in [0,1]; Overall folds it
	// into the whole batch. Determinate is false when no frame total or
	// duration is known for the input — callers should show an unquantified
	// "in progress" state instead of the fractions.
	Fraction    float64
	Overall     float64
	Determinate bool

	// Stage is a short human-readable status line ("converting gif", …).
	Stage string
}

// ProgressSink receives progress events; LogSink receives human-readable
// log lines. Either may be nil.
type ProgressSink func(ProgressEvent)
type LogSink func(msg string)
