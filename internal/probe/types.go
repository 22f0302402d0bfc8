package probe

import (
	"fmt"
	"time"
)

// Result holds the parsed properties of one input's primary video stream.
type Result struct {
	Width  int
	Height int
	FPS    float64

	// TotalFrames is the exact or estimated frame count; zero when unknown.
	// FramesEstimated marks counts derived from fps×duration rather than
	// read from the container.
	TotalFrames     int
	FramesEstimated bool

	// Duration of the stream; zero when the container does not report it.
	Duration time.Duration
}

// Error is returned when metadata extraction fails: the tool is missing,
// exits non-zero, or produces unparsable output. It is non-fatal to the
// batch; only the jobs of the offending input fail.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("probe %q: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
