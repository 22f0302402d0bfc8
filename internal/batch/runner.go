package batch

import (
	"context"
	"time"

	"github.com/JokerFrankZ/convert-videos/internal/config"
	"github.com/JokerFrankZ/convert-videos/internal/ffmpeg"
	"github.com/JokerFrankZ/convert-videos/internal/planner"
	"github.com/JokerFrankZ/convert-videos/internal/probe"
	"github.com/JokerFrankZ/convert-videos/internal/sequence"
)

// runOutcome is the raw result of one subprocess run before the controller
// classifies it into a JobResult.
type runOutcome struct {
	cancelled bool // The runner terminated the subprocess on a cancel signal.
	err       error
}

// jobRunner executes one job's external process. The controller depends on
// this interface so tests can inject a fake and never spawn ffmpeg.
type jobRunner interface {
	Run(job *planner.Job, meta *probe.Result, sig *Signal, onProgress ffmpeg.ProgressFunc) runOutcome
}

// prober resolves metadata for one input. Injectable for the same reason.
type prober interface {
	ProbeInput(ctx context.Context, in *sequence.Input, fps int) (*probe.Result, error)
}

// ffmpegRunner is the production jobRunner: it starts the encoder and polls
// the control signal at the configured interval so a cancel is honored
// within bounded latency even mid-encode. Pause is deliberately not acted
// on here — a running subprocess continues to completion; pausing gates the
// next job boundary.
type ffmpegRunner struct {
	cfg *config.Config
}

func (r *ffmpegRunner) Run(job *planner.Job, meta *probe.Result, sig *Signal, onProgress ffmpeg.ProgressFunc) runOutcome {
	proc, err := ffmpeg.Start(job, meta, r.cfg, onProgress)
	if err != nil {
		return runOutcome{err: err}
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- proc.Wait() }()

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	cancelCh := sig.CancelChan()
	terminated := false
	terminate := func() {
		terminated = true
		cancelCh = nil // stop waking on the closed channel
		go proc.Terminate(r.cfg.CancelGrace)
	}

	for {
		select {
		case err := <-waitCh:
			return runOutcome{cancelled: terminated, err: err}
		case <-ticker.C:
			if !terminated && sig.Cancelled() {
				terminate()
			}
		case <-cancelCh:
			terminate()
		}
	}
}

// ffprobeProber is the production prober. Videos get the full ffprobe
// treatment. For sequences the first frame supplies dimensions while frame
// count and duration derive from the member list and the requested rate;
// an unreadable first frame fails the whole input.
type ffprobeProber struct{}

func (ffprobeProber) ProbeInput(ctx context.Context, in *sequence.Input, fps int) (*probe.Result, error) {
	if !in.IsSequence() {
		return probe.Probe(ctx, in.Path)
	}

	first, err := probe.Probe(ctx, in.Frames[0].Path)
	if err != nil {
		return nil, err
	}
	return &probe.Result{
		Width:       first.Width,
		Height:      first.Height,
		FPS:         float64(fps),
		TotalFrames: in.FrameCount(),
		Duration:    time.Duration(float64(in.FrameCount()) / float64(fps) * float64(time.Second)),
	}, nil
}
