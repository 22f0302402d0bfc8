package ffmpeg

import (
	"strconv"
	"strings"
	"time"
)

// Tracker maps ffmpeg's -progress key=value stream to a normalized
// completion fraction. The stream is loosely specified text: keys may be
// absent, reordered, or carry "N/A", so parsing is tolerant — lines that
// don't yield a usable counter are simply skipped and the fraction never
// goes backwards.
//
// When neither a frame total nor a duration is known, the tracker is
// indeterminate: Update reports activity without a fabricated percentage.
type Tracker struct {
	totalFrames int
	duration    time.Duration
	last        float64
	done        bool
}

// NewTracker builds a tracker for one job. totalFrames is the expected
// output frame count (0 = unknown); duration the source duration (0 =
// unknown).
func NewTracker(totalFrames int, duration time.Duration) *Tracker {
	return &Tracker{totalFrames: totalFrames, duration: duration}
}

// Determinate reports whether the tracker can produce real fractions.
func (t *Tracker) Determinate() bool {
	return t.totalFrames > 0 || t.duration > 0
}

// Fraction returns the last observed completion fraction in [0,1].
func (t *Tracker) Fraction() float64 { return t.last }

// Done reports whether the stream signalled progress=end.
func (t *Tracker) Done() bool { return t.done }

// Update consumes one line of the progress stream. ok is true when the line
// advanced the fraction (or, for an indeterminate tracker, when it carried a
// recognized counter at all).
func (t *Tracker) Update(line string) (fraction float64, ok bool) {
	key, value, found := strings.Cut(strings.TrimSpace(line), "=")
	if !found {
		return t.last, false
	}
	value = strings.TrimSpace(value)

	if key == "progress" && value == "end" {
		t.done = true
		if t.Determinate() {
			t.last = 1
		}
		return t.last, true
	}

	if !t.Determinate() {
		// Recognized counters still prove liveness.
		switch key {
		case "frame", "out_time_ms", "out_time_us", "out_time":
			return t.last, true
		}
		return t.last, false
	}

	var ratio float64
	switch key {
	case "frame":
		if t.totalFrames <= 0 {
			return t.last, false
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return t.last, false
		}
		ratio = float64(n) / float64(t.totalFrames)
	case "out_time_ms", "out_time_us":
		if t.duration <= 0 {
			return t.last, false
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return t.last, false
		}
		elapsed := time.Duration(n) * time.Millisecond
		if key == "out_time_us" {
			elapsed = time.Duration(n) * time.Microsecond
		}
		ratio = float64(elapsed) / float64(t.duration)
	case "out_time":
		if t.duration <= 0 {
			return t.last, false
		}
		elapsed, err := parseClock(value)
		if err != nil {
			return t.last, false
		}
		ratio = float64(elapsed) / float64(t.duration)
	default:
		return t.last, false
	}

	ratio = clamp01(ratio)
	if ratio <= t.last {
		return t.last, false
	}
	t.last = ratio
	return t.last, true
}

// parseClock parses ffmpeg's HH:MM:SS.frac out_time form.
func parseClock(s string) (time.Duration, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return 0, strconv.ErrSyntax
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, strconv.ErrSyntax
	}
	total := float64(h)*3600 + float64(m)*60 + sec
	return time.Duration(total * float64(time.Second)), nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
