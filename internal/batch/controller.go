package batch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JokerFrankZ/convert-videos/internal/config"
	"github.com/JokerFrankZ/convert-videos/internal/logging"
	"github.com/JokerFrankZ/convert-videos/internal/planner"
	"github.com/JokerFrankZ/convert-videos/internal/probe"
)

// Controller owns batch execution: it expands requests into plans, runs the
// resulting jobs (sequentially or on a bounded worker pool), and mediates
// pause/cancel between callers and running subprocesses.
type Controller struct {
	cfg    *config.Config
	log    zerolog.Logger
	runner jobRunner
	prober prober
}

// NewController returns a controller executing jobs with ffmpeg and probing
// inputs with ffprobe.
func NewController(cfg *config.Config, log zerolog.Logger) *Controller {
	return &Controller{
		cfg:    cfg,
		log:    logging.Component(log, "batch"),
		runner: &ffmpegRunner{cfg: cfg},
		prober: ffprobeProber{},
	}
}

// Submit expands the request into a plan and starts executing it in the
// background. Planning failures are returned synchronously; once a handle is
// returned every planned job is guaranteed exactly one JobResult. Cancelling
// ctx is equivalent to calling Cancel on the handle.
func (c *Controller) Submit(ctx context.Context, req planner.Request) (*Handle, error) {
	plan, err := planner.Expand(req)
	if err != nil {
		return nil, err
	}

	n := len(plan.Inputs)
	h := &Handle{
		id:        uuid.NewString(),
		plan:      plan,
		signal:    newSignal(),
		probeOnce: make([]sync.Once, n),
		probeRes:  make([]*probe.Result, n),
		probeErr:  make([]error, n),
		done:      make(chan struct{}),
	}
	h.state.Store(int32(StateRunning))

	c.log.Info().
		Str("batch_id", h.id).
		Int("inputs", len(plan.Inputs)).
		Int("jobs", len(plan.Jobs)).
		Msg("batch submitted")

	go c.run(ctx, h)
	return h, nil
}

func (c *Controller) run(ctx context.Context, h *Handle) {
	start := time.Now()
	result := &Result{
		BatchID: h.id,
		Jobs:    make([]JobResult, 0, len(h.plan.Jobs)),
	}

	// Caller context cancellation folds into the cooperative signal so the
	// poll loop and the pause gate both observe it.
	watchDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			h.signal.Cancel()
		case <-watchDone:
		}
	}()

	dirErr := c.prepareDirs(h)

	record := func(jr JobResult) {
		result.Jobs = append(result.Jobs, jr)
		result.count(jr)
		h.completed.Add(1)
		h.emitResult(jr)
		c.logResult(h, jr)
	}

	switch {
	case dirErr != nil:
		for i := range h.plan.Jobs {
			job := &h.plan.Jobs[i]
			record(JobResult{
				Index:     job.Index,
				InputPath: job.Input.Path,
				Format:    job.Format,
				Status:    StatusFailed,
				Err:       &planner.PlanError{Reason: "create output directories", Err: dirErr},
			})
		}
	case c.cfg.Workers > 1 && len(h.plan.Jobs) > 1:
		c.runPool(ctx, h, record)
	default:
		for i := range h.plan.Jobs {
			record(c.executeJob(ctx, h, &h.plan.Jobs[i]))
		}
	}

	result.Elapsed = time.Since(start)
	result.Interrupted = h.signal.Cancelled()

	close(watchDone)
	if result.Interrupted {
		h.state.Store(int32(StateCancelled))
	} else {
		h.state.Store(int32(StateCompleted))
	}
	h.result = result
	close(h.done)

	c.log.Info().
		Str("batch_id", h.id).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Int("cancelled", result.Cancelled).
		Dur("elapsed", result.Elapsed).
		Msg("batch finished")
}

// prepareDirs creates every output directory the plan needs, up front, so a
// pool worker never races another over a shared parent.
func (c *Controller) prepareDirs(h *Handle) error {
	if h.signal.Cancelled() {
		return nil
	}
	for _, dir := range h.plan.Dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// runPool executes jobs on cfg.Workers goroutines while emitting JobResults
// in planned order: out-of-order completions are buffered until their turn.
func (c *Controller) runPool(ctx context.Context, h *Handle, record func(JobResult)) {
	workers := c.cfg.Workers
	if workers > len(h.plan.Jobs) {
		workers = len(h.plan.Jobs)
	}

	jobs := make(chan *planner.Job)
	results := make(chan JobResult)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- c.executeJob(ctx, h, job)
			}
		}()
	}

	go func() {
		for i := range h.plan.Jobs {
			jobs <- &h.plan.Jobs[i]
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	pending := make(map[int]JobResult)
	next := 0
	for jr := range results {
		pending[jr.Index] = jr
		for {
			buffered, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			record(buffered)
			next++
		}
	}
}

// executeJob takes one job from gate to terminal JobResult. The pause gate
// sits at the job boundary; a pending cancel wins over a pending resume.
func (c *Controller) executeJob(ctx context.Context, h *Handle, job *planner.Job) JobResult {
	jr := JobResult{
		Index:      job.Index,
		InputPath:  job.Input.Path,
		Format:     job.Format,
		OutputPath: job.OutputPath,
	}

	h.signal.AwaitResume()
	if h.signal.Cancelled() {
		jr.Status = StatusCancelled
		jr.Err = ErrCancelled
		return jr
	}

	h.logf("[%d/%d] %s -> %s", job.Index+1, len(h.plan.Jobs), job.Input.Path, job.OutputPath)

	meta, err := h.probeInput(ctx, c.prober, job)
	if err != nil {
		jr.Status = StatusFailed
		jr.Err = err
		return jr
	}

	// A cancel that landed while probing must not spawn the encoder.
	if h.signal.Cancelled() {
		jr.Status = StatusCancelled
		jr.Err = ErrCancelled
		return jr
	}

	h.emitProgress(job, 0, meta.TotalFrames > 0, "starting")

	start := time.Now()
	out := c.runner.Run(job, meta, h.signal, func(fraction float64, determinate bool) {
		h.emitProgress(job, fraction, determinate, "converting")
	})
	jr.Elapsed = time.Since(start)

	switch {
	case out.cancelled:
		jr.Status = StatusCancelled
		jr.Err = ErrCancelled
	case out.err != nil:
		jr.Status = StatusFailed
		jr.Err = out.err
	default:
		jr.Status = StatusSucceeded
		h.emitProgress(job, 1, true, "done")
	}
	return jr
}

func (c *Controller) logResult(h *Handle, jr JobResult) {
	var ev *zerolog.Event
	switch jr.Status {
	case StatusFailed:
		ev = c.log.Error().Err(jr.Err)
	case StatusCancelled:
		ev = c.log.Warn()
	default:
		ev = c.log.Info()
	}
	ev.Str("batch_id", h.id).
		Int("job", jr.Index).
		Str("input", jr.InputPath).
		Str("format", string(jr.Format)).
		Str("status", string(jr.Status)).
		Dur("elapsed", jr.Elapsed).
		Msg("job finished")
}
