package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Probe runs ffprobe against path and returns the parsed result. The frame
// count is resolved in three stages: nb_frames from the container, a
// -count_frames decode pass, and finally an fps×duration estimate.
func Probe(ctx context.Context, path string) (*Result, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,nb_frames,duration_ts,time_base",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	res, err := ParseJSON(out)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	if res.TotalFrames == 0 {
		if n := countFrames(ctx, path); n > 0 {
			res.TotalFrames = n
		}
	}
	if res.TotalFrames == 0 && res.Duration > 0 && res.FPS > 0 {
		res.TotalFrames = max(1, int(res.FPS*res.Duration.Seconds()))
		res.FramesEstimated = true
	}
	return res, nil
}

// ParseJSON converts raw ffprobe JSON output into a Result.
// Exported for testing without a real ffprobe binary.
func ParseJSON(data []byte) (*Result, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse ffprobe JSON: %w", err)
	}
	if len(raw.Streams) == 0 {
		return nil, errors.New("no video stream found")
	}
	return buildResult(&raw)
}

// countFrames runs the slow decode-and-count ffprobe pass. Returns 0 on any
// failure; the caller falls back to estimation.
func countFrames(ctx context.Context, path string) int {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-count_frames",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_read_frames",
		"-of", "default=nokey=1:noprint_wrappers=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	NbFrames   string `json:"nb_frames"`
	DurationTS int64  `json:"duration_ts"`
	TimeBase   string `json:"time_base"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

// --- Conversion from wire types to domain types ---

func buildResult(raw *ffprobeOutput) (*Result, error) {
	s := &raw.Streams[0]

	fps, err := parseRate(s.RFrameRate)
	if err != nil {
		return nil, err
	}
	if s.Width <= 0 || s.Height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("invalid stream parameters (%dx%d @ %g fps)", s.Width, s.Height, fps)
	}

	res := &Result{
		Width:  s.Width,
		Height: s.Height,
		FPS:    fps,
	}

	if n, err := strconv.Atoi(strings.TrimSpace(s.NbFrames)); err == nil && n > 0 {
		res.TotalFrames = n
	}

	res.Duration = streamDuration(s)
	if res.Duration == 0 {
		if sec, err := strconv.ParseFloat(strings.TrimSpace(raw.Format.Duration), 64); err == nil && sec > 0 {
			res.Duration = time.Duration(sec * float64(time.Second))
		}
	}
	return res, nil
}

// streamDuration derives the stream duration from duration_ts and time_base.
func streamDuration(s *ffprobeStream) time.Duration {
	if s.DurationTS <= 0 || s.TimeBase == "" {
		return 0
	}
	num, den, ok := splitFraction(s.TimeBase)
	if !ok || num <= 0 || den <= 0 {
		return 0
	}
	return time.Duration(float64(s.DurationTS) * float64(num) / float64(den) * float64(time.Second))
}

// parseRate parses ffprobe's fractional rate form ("30000/1001" or "25").
func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if num, den, ok := splitFraction(s); ok {
		if den == 0 {
			return 0, fmt.Errorf("invalid frame rate %q", s)
		}
		return float64(num) / float64(den), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate %q", s)
	}
	return f, nil
}

func splitFraction(s string) (num, den int64, ok bool) {
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return 0, 0, false
	}
	n, err1 := strconv.ParseInt(strings.TrimSpace(s[:i]), 10, 64)
	d, err2 := strconv.ParseInt(strings.TrimSpace(s[i+1:]), 10, 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return n, d, true
}
