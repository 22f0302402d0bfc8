package planner

import (
	"fmt"

	"github.com/JokerFrankZ/convert-videos/internal/config"
	"github.com/JokerFrankZ/convert-videos/internal/sequence"
)

// Request is one user-specified unit of work before expansion: input paths,
// target formats, output root, and the transform parameters shared by every
// job.
type Request struct {
	Inputs    []string // Video files or sequence seed frames, in user order.
	Formats   []config.Format
	OutputDir string

	Width   int
	Height  int
	FPS     int
	Quality config.Quality
}

// NewRequest builds a Request from validated config plus resolved input paths.
func NewRequest(cfg *config.Config, inputs []string) Request {
	return Request{
		Inputs:    inputs,
		Formats:   cfg.Formats,
		OutputDir: cfg.OutputDir,
		Width:     cfg.Width,
		Height:    cfg.Height,
		FPS:       cfg.FPS,
		Quality:   cfg.Quality,
	}
}

// Job is one atomic unit of external-process work: one resolved input, one
// output format, one output path. Created by Plan, owned by the batch
// controller during execution.
type Job struct {
	// Index is the position in planned order; results are reported in this
	// order.
	Index int

	// InputIndex groups jobs sharing a resolved input, so a single probe
	// (or probe failure) covers all of an input's formats.
	InputIndex int
	Input      *sequence.Input

	Format config.Format

	// OutputPath is the output file, or the %04d frame pattern for PNG
	// sequences. OutputSubdir is the directory that must exist before the
	// job runs; directory creation happens once at batch start, not here.
	OutputPath   string
	OutputSubdir string

	// Effective parameters after defaults and even-dimension clamping.
	Width   int
	Height  int
	FPS     int
	Quality config.Quality
}

// Plan is the expanded batch: jobs in execution order plus the directories
// the controller must create before the first job.
type Plan struct {
	Jobs   []Job
	Inputs []*sequence.Input
	Dirs   []string
}

// PlanError marks a request invalid before any subprocess is spawned:
// unwritable output location, output path collision, or bad parameters.
// It is fatal to the whole batch.
type PlanError struct {
	Reason string
	Err    error
}

func (e *PlanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plan: %s: %v", e.Reason, e.Err)
	}
	return "plan: " + e.Reason
}

func (e *PlanError) Unwrap() error { return e.Err }
