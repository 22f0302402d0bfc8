package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JokerFrankZ/convert-videos/internal/config"
	"github.com/JokerFrankZ/convert-videos/internal/planner"
	"github.com/JokerFrankZ/convert-videos/internal/probe"
)

// Build constructs the complete ffmpeg argument slice for a job. The
// generated command follows a shared skeleton — preamble, input, optional
// frame cap, filter chain, format-specific options, progress reporting,
// output — with the format-specific sections injected per job.
//
// meta may be nil; only the APNG size tuner consumes it, degrading to the
// untuned parameters. The batch controller always supplies a probe result —
// probe failures fail the job before the encoder is invoked.
func Build(job *planner.Job, meta *probe.Result, cfg *config.Config) []string {
	args := make([]string, 0, 32)

	// --- Preamble ---
	args = append(args, "ffmpeg", "-hide_banner", "-nostdin", "-loglevel", "error", "-y")

	// --- Input ---
	args = append(args, inputArgs(job)...)

	fps := float64(job.FPS)
	maxFrames := 0
	if job.Format == config.FormatAPNG {
		fps, maxFrames = apngParams(job, meta, cfg)
	}

	if maxFrames > 0 {
		args = append(args, "-frames:v", strconv.Itoa(maxFrames))
	}

	// --- Filter chain ---
	args = append(args, "-vf", filterFor(job, fps))

	// --- Format options ---
	if job.Format == config.FormatAPNG {
		args = append(args,
			"-f", "apng",
			"-plays", "0",
			"-compression_level", "9",
			"-pred", "mixed",
		)
	}

	// --- Progress stream and output ---
	args = append(args, "-progress", "pipe:1", "-nostats", job.OutputPath)
	return args
}

// inputArgs returns the input section of the command. Contiguous sequences
// use the image2 pattern; gapped or mixed-padding runs read a concat list
// from stdin (see ConcatList) so nothing is written outside the output dir.
func inputArgs(job *planner.Job) []string {
	in := job.Input
	if !in.IsSequence() {
		return []string{"-i", in.Path}
	}
	if in.Contiguous {
		return []string{
			"-framerate", strconv.Itoa(job.FPS),
			"-start_number", strconv.Itoa(in.StartNumber),
			"-i", in.Pattern,
		}
	}
	return []string{
		"-f", "concat",
		"-safe", "0",
		"-protocol_whitelist", "file,pipe",
		"-i", "pipe:0",
	}
}

// NeedsStdin reports whether the job's input is delivered on the
// subprocess's standard input.
func NeedsStdin(job *planner.Job) bool {
	return job.Input.IsSequence() && !job.Input.Contiguous
}

// ConcatList renders the ffconcat script for a gapped sequence: one file
// entry per frame with a uniform 1/fps duration.
func ConcatList(job *planner.Job) string {
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, f := range job.Input.Frames {
		fmt.Fprintf(&b, "file '%s'\nduration %d/%d\n", strings.ReplaceAll(f.Path, "'", `'\''`), 1, job.FPS)
	}
	return b.String()
}

// filterFor returns the filter graph for the job's format and quality tier.
func filterFor(job *planner.Job, fps float64) string {
	base := ScaleFilter(job.Width, job.Height, fps)
	if job.Format != config.FormatGIF {
		return base
	}
	return gifQualityFilter(base, job.Quality)
}

// ScaleFilter is the shared scale/crop/fps expression: fill the target box
// preserving aspect ratio, crop the overflow, resample to the target rate.
func ScaleFilter(width, height int, fps float64) string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%s",
		width, height, width, height, formatFPS(fps))
}

// gifQualityFilter wraps the base filter in the palette graph for the tier.
// The fast tier skips palette generation entirely (single pass, default
// 256-color quantization).
func gifQualityFilter(base string, q config.Quality) string {
	switch q {
	case config.QualityFast:
		return base
	case config.QualityHigh:
		return base + ",split[s0][s1];[s0]palettegen=max_colors=256:stats_mode=single:reserve_transparent=0[p];" +
			"[s1][p]paletteuse=dither=bayer:bayer_scale=2"
	case config.QualityUltra:
		return base + ",split[s0][s1];[s0]palettegen=max_colors=256:stats_mode=full:reserve_transparent=0[p];" +
			"[s1][p]paletteuse=dither=sierra2_4a"
	default: // balanced
		return base + ",split[s0][s1];[s0]palettegen=max_colors=192:stats_mode=single[p];" +
			"[s1][p]paletteuse=dither=bayer:bayer_scale=3"
	}
}

// apngParams tunes frame rate and frame count so the APNG lands near the
// configured target size, using a rough width×height×frames×0.5 bytes
// estimate. Strategy: lower fps in ×0.8 steps to the configured floor, then
// cap the frame count (never below 30). Returns the untuned values when no
// frame estimate is available.
func apngParams(job *planner.Job, meta *probe.Result, cfg *config.Config) (fps float64, maxFrames int) {
	fps = float64(job.FPS)

	frames := frameEstimate(job, meta)
	if frames <= 0 || cfg.APNGTargetBytes <= 0 {
		return fps, 0
	}

	const bytesPerPixel = 0.5
	pixels := float64(job.Width * job.Height)
	estimate := func(n int) float64 { return pixels * bytesPerPixel * float64(n) }

	target := float64(cfg.APNGTargetBytes)
	if estimate(frames) <= target {
		return fps, 0
	}

	adjusted := frames
	for fps > cfg.APNGMinFPS && estimate(adjusted) > target {
		fps = maxFloat(cfg.APNGMinFPS, fps*0.8)
		adjusted = int(float64(frames) * fps / float64(job.FPS))
	}
	if estimate(adjusted) <= target {
		return fps, 0
	}

	capped := int(target / (pixels * bytesPerPixel))
	if capped < adjusted {
		adjusted = max(30, capped)
	}
	return fps, adjusted
}

// frameEstimate returns the expected output frame count for the job, or 0
// when it cannot be derived (indeterminate progress).
func frameEstimate(job *planner.Job, meta *probe.Result) int {
	if in := job.Input; in.IsSequence() {
		return in.FrameCount()
	}
	if meta == nil {
		return 0
	}
	if meta.Duration > 0 {
		return max(1, int(float64(job.FPS)*meta.Duration.Seconds()))
	}
	if meta.TotalFrames > 0 && meta.FPS > 0 {
		return max(1, int(float64(meta.TotalFrames)*float64(job.FPS)/meta.FPS))
	}
	return meta.TotalFrames
}

// formatFPS renders a frame rate without trailing zeros (12, 9.6).
func formatFPS(fps float64) string {
	s := strconv.FormatFloat(fps, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
