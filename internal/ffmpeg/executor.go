package ffmpeg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/JokerFrankZ/convert-videos/internal/config"
	"github.com/JokerFrankZ/convert-videos/internal/planner"
	"github.com/JokerFrankZ/convert-videos/internal/probe"
)

// ProgressFunc receives normalized progress updates for a running job.
// determinate is false when no frame total or duration is known, in which
// case fraction stays 0 and the update only proves the encoder is alive.
type ProgressFunc func(fraction float64, determinate bool)

// Process is one running encoder subprocess. Start it with [Start]; exactly
// one Wait call must follow. Terminate may be called concurrently from
// another goroutine.
type Process struct {
	cmd     *exec.Cmd
	tracker *Tracker
	onProg  ProgressFunc

	tail tailBuffer // written only by the stderr goroutine, read after wg.Wait

	// stdinErr carries the concat-list write outcome for stdin-fed jobs;
	// nil for every other input shape.
	stdinErr chan error

	wg   sync.WaitGroup
	done chan struct{}
}

// Start builds the argument vector for job and launches the subprocess with
// its progress stream and stderr captured. meta may be nil, in which case
// progress is indeterminate; see [Build] for when that can happen.
func Start(job *planner.Job, meta *probe.Result, cfg *config.Config, onProgress ProgressFunc) (*Process, error) {
	args := Build(job, meta, cfg)

	p := &Process{
		cmd:     exec.Command(args[0], args[1:]...),
		tracker: NewTracker(trackerTotals(job, meta)),
		onProg:  onProgress,
		done:    make(chan struct{}),
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe ffmpeg stdout: %w", err)
	}
	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe ffmpeg stderr: %w", err)
	}

	var stdin io.WriteCloser
	if NeedsStdin(job) {
		stdin, err = p.cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("pipe ffmpeg stdin: %w", err)
		}
	}

	if err := p.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	if stdin != nil {
		list := ConcatList(job)
		p.stdinErr = make(chan error, 1)
		go func() {
			_, werr := io.WriteString(stdin, list)
			if cerr := stdin.Close(); werr == nil {
				werr = cerr
			}
			p.stdinErr <- werr
		}()
	}

	p.wg.Add(2)
	go p.readProgress(stdout)
	go p.readStderr(stderr)
	return p, nil
}

// trackerTotals derives the progress denominators for a job.
func trackerTotals(job *planner.Job, meta *probe.Result) (totalFrames int, duration time.Duration) {
	totalFrames = frameEstimate(job, meta)
	if in := job.Input; in.IsSequence() {
		duration = time.Duration(float64(in.FrameCount()) / float64(job.FPS) * float64(time.Second))
	} else if meta != nil {
		duration = meta.Duration
	}
	return totalFrames, duration
}

// readProgress consumes the key=value progress stream line by line.
func (p *Process) readProgress(r io.Reader) {
	defer p.wg.Done()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if _, ok := p.tracker.Update(sc.Text()); ok && p.onProg != nil {
			p.onProg(p.tracker.Fraction(), p.tracker.Determinate())
		}
	}
}

// readStderr keeps the trailing diagnostic lines.
func (p *Process) readStderr(r io.Reader) {
	defer p.wg.Done()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		p.tail.add(sc.Text())
	}
}

// Wait blocks until the subprocess exits. A non-zero exit is returned as a
// *EncodeError carrying the exit code and the stderr tail. A zero exit
// returns nil even if Terminate was called first; the caller decides how a
// terminated job is classified.
func (p *Process) Wait() error {
	p.wg.Wait()
	err := p.cmd.Wait()
	close(p.done)
	if err == nil {
		return nil
	}

	code := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	tail := append([]string(nil), p.tail.lines...)
	if p.stdinErr != nil {
		select {
		case werr := <-p.stdinErr:
			if werr != nil {
				tail = append(tail, "write concat list to stdin: "+werr.Error())
			}
		default:
		}
	}
	return &EncodeError{
		ExitCode: code,
		Reason:   Classify(tail),
		Tail:     tail,
	}
}

// Terminate asks the subprocess to stop: a graceful interrupt first, then a
// hard kill if it is still alive after the grace period. Safe to call after
// the process has already exited.
func (p *Process) Terminate(grace time.Duration) {
	proc := p.cmd.Process
	if proc == nil {
		return
	}
	if err := proc.Signal(os.Interrupt); err != nil {
		proc.Kill()
		return
	}
	select {
	case <-p.done:
	case <-time.After(grace):
		proc.Kill()
	}
}
