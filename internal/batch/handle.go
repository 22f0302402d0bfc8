package batch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/JokerFrankZ/convert-videos/internal/planner"
	"github.com/JokerFrankZ/convert-videos/internal/probe"
)

// Handle is the caller's view of one submitted batch: control (pause,
// cancel), subscription, and the final result. All methods are safe to call
// from any goroutine; the batch itself runs on a background worker.
type Handle struct {
	id     string
	plan   *planner.Plan
	signal *Signal
	state  atomic.Int32

	// completed counts terminal jobs, for folding per-job fractions into
	// overall batch progress.
	completed atomic.Int64

	mu           sync.RWMutex
	progressSink ProgressSink
	logSink      LogSink
	resultSink   func(JobResult)

	// Per-input probe memoisation: all formats of one input share a single
	// probe call (or a single probe failure).
	probeOnce []sync.Once
	probeRes  []*probe.Result
	probeErr  []error

	done   chan struct{}
	result *Result
}

// ID returns the batch identifier.
func (h *Handle) ID() string { return h.id }

// Jobs returns the number of planned jobs.
func (h *Handle) Jobs() int { return len(h.plan.Jobs) }

// SetPaused toggles the pause facet. A running subprocess finishes its job;
// pausing takes effect at the next job boundary.
func (h *Handle) SetPaused(paused bool) { h.signal.SetPaused(paused) }

// Paused reports whether the batch is currently pause-gated.
func (h *Handle) Paused() bool { return h.signal.Paused() }

// Cancel requests cooperative cancellation: the current job's subprocess is
// terminated (graceful, then forced) and remaining jobs are marked
// cancelled without starting. Honored within the configured poll interval.
func (h *Handle) Cancel() { h.signal.Cancel() }

// State returns the batch lifecycle state.
func (h *Handle) State() State { return State(h.state.Load()) }

// Subscribe attaches the progress and log sinks. Events emitted before
// subscription are not replayed.
func (h *Handle) Subscribe(progress ProgressSink, log LogSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.progressSink = progress
	h.logSink = log
}

// OnResult attaches a sink receiving each JobResult in planned order.
func (h *Handle) OnResult(sink func(JobResult)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resultSink = sink
}

// Done returns a channel closed when the batch reaches a terminal state.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the batch finishes and returns the final result.
func (h *Handle) Wait() *Result {
	<-h.done
	return h.result
}

// probeInput memoises the probe of one input across its format jobs.
func (h *Handle) probeInput(ctx context.Context, p prober, job *planner.Job) (*probe.Result, error) {
	idx := job.InputIndex
	h.probeOnce[idx].Do(func() {
		h.probeRes[idx], h.probeErr[idx] = p.ProbeInput(ctx, job.Input, job.FPS)
	})
	return h.probeRes[idx], h.probeErr[idx]
}

func (h *Handle) emitProgress(job *planner.Job, fraction float64, determinate bool, stage string) {
	h.mu.RLock()
	sink := h.progressSink
	h.mu.RUnlock()
	if sink == nil {
		return
	}

	total := len(h.plan.Jobs)
	overall := (float64(h.completed.Load()) + clampFraction(fraction)) / float64(total)
	sink(ProgressEvent{
		BatchID:     h.id,
		JobIndex:    job.Index,
		TotalJobs:   total,
		InputPath:   job.Input.Path,
		Format:      job.Format,
		Fraction:    clampFraction(fraction),
		Overall:     overall,
		Determinate: determinate,
		Stage:       stage,
	})
}

func (h *Handle) emitResult(jr JobResult) {
	h.mu.RLock()
	sink := h.resultSink
	h.mu.RUnlock()
	if sink != nil {
		sink(jr)
	}
}

func (h *Handle) logf(format string, args ...interface{}) {
	h.mu.RLock()
	sink := h.logSink
	h.mu.RUnlock()
	if sink != nil {
		sink(fmt.Sprintf(format, args...))
	}
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
