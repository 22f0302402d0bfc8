package ffmpeg

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/JokerFrankZ/convert-videos/internal/config"
	"github.com/JokerFrankZ/convert-videos/internal/planner"
	"github.com/JokerFrankZ/convert-videos/internal/probe"
	"github.com/JokerFrankZ/convert-videos/internal/sequence"
)

func videoJob(format config.Format) *planner.Job {
	return &planner.Job{
		Input:      sequence.Video("/in/clip.mp4"),
		Format:     format,
		OutputPath: "/out/" + string(format) + "/clip." + format.Extension(),
		Width:      320,
		Height:     240,
		FPS:        12,
		Quality:    config.QualityBalanced,
	}
}

func sequenceJob(contiguous bool) *planner.Job {
	in := &sequence.Input{
		Kind: sequence.KindFrames,
		Path: "/in/frame_001.png",
		Stem: "frame",
		Frames: []sequence.Frame{
			{Path: "/in/frame_001.png", Number: 1},
			{Path: "/in/frame_002.png", Number: 2},
			{Path: "/in/frame_004.png", Number: 4},
		},
		StartNumber: 1,
	}
	if contiguous {
		in.Frames[2] = sequence.Frame{Path: "/in/frame_003.png", Number: 3}
		in.Pattern = "/in/frame_%03d.png"
		in.Contiguous = true
	}
	return &planner.Job{
		Input:      in,
		Format:     config.FormatGIF,
		OutputPath: "/out/gif/frame.gif",
		Width:      320,
		Height:     240,
		FPS:        12,
		Quality:    config.QualityBalanced,
	}
}

func testCfg() *config.Config {
	cfg := config.DefaultConfig()
	return &cfg
}

func TestBuildGIFCommand(t *testing.T) {
	job := videoJob(config.FormatGIF)
	args := Build(job, &probe.Result{Width: 640, Height: 480, FPS: 25, TotalFrames: 100, Duration: 4 * time.Second}, testCfg())

	wantPrefix := []string{"ffmpeg", "-hide_banner", "-nostdin", "-loglevel", "error", "-y", "-i", "/in/clip.mp4"}
	if !reflect.DeepEqual(args[:len(wantPrefix)], wantPrefix) {
		t.Fatalf("command prefix = %v, want %v", args[:len(wantPrefix)], wantPrefix)
	}
	if args[len(args)-1] != "/out/gif/clip.gif" {
		t.Errorf("output path should be last arg, got %q", args[len(args)-1])
	}

	vf := argAfter(t, args, "-vf")
	if !strings.Contains(vf, "scale=320:240:force_original_aspect_ratio=increase,crop=320:240,fps=12") {
		t.Errorf("filter missing scale/crop/fps chain: %q", vf)
	}
	if !strings.Contains(vf, "palettegen") || !strings.Contains(vf, "paletteuse") {
		t.Errorf("gif filter should carry the palette graph: %q", vf)
	}

	if argAfter(t, args, "-progress") != "pipe:1" {
		t.Error("progress stream must go to stdout")
	}
	if !contains(args, "-nostats") {
		t.Error("missing -nostats")
	}
}

func TestBuildAPNGOptions(t *testing.T) {
	job := videoJob(config.FormatAPNG)
	// Small source, no size tuning kicks in.
	meta := &probe.Result{Width: 640, Height: 480, FPS: 25, TotalFrames: 25, Duration: time.Second}
	args := Build(job, meta, testCfg())

	if argAfter(t, args, "-f") != "apng" {
		t.Error("apng jobs must force the apng muxer")
	}
	if argAfter(t, args, "-plays") != "0" {
		t.Error("apng should loop forever")
	}
	if argAfter(t, args, "-compression_level") != "9" || argAfter(t, args, "-pred") != "mixed" {
		t.Error("apng compression options missing")
	}
	if contains(args, "-frames:v") {
		t.Error("short source should not be frame-capped")
	}
}

func TestBuildAPNGSizeTuning(t *testing.T) {
	job := videoJob(config.FormatAPNG)
	// 2 minutes at 12fps: far past the size target, fps must drop to the
	// floor and the frame count must be capped.
	meta := &probe.Result{Width: 1920, Height: 1080, FPS: 30, TotalFrames: 3600, Duration: 2 * time.Minute}
	args := Build(job, meta, testCfg())

	vf := argAfter(t, args, "-vf")
	if !strings.Contains(vf, "fps=6") {
		t.Errorf("fps should be tuned down to the floor: %q", vf)
	}
	if !contains(args, "-frames:v") {
		t.Error("oversized source should be frame-capped")
	}
}

func TestBuildAPNGWithoutMetadata(t *testing.T) {
	job := videoJob(config.FormatAPNG)
	args := Build(job, nil, testCfg())

	vf := argAfter(t, args, "-vf")
	if !strings.Contains(vf, "fps=12") {
		t.Errorf("untuned fps expected without metadata: %q", vf)
	}
	if contains(args, "-frames:v") {
		t.Error("no frame cap without a frame estimate")
	}
}

func TestBuildContiguousSequenceInput(t *testing.T) {
	job := sequenceJob(true)
	args := Build(job, nil, testCfg())

	if argAfter(t, args, "-framerate") != "12" {
		t.Error("sequence input needs an explicit -framerate")
	}
	if argAfter(t, args, "-start_number") != "1" {
		t.Error("sequence input needs -start_number")
	}
	if argAfter(t, args, "-i") != "/in/frame_%03d.png" {
		t.Errorf("input should be the image2 pattern, got %q", argAfter(t, args, "-i"))
	}
	if NeedsStdin(job) {
		t.Error("contiguous sequences do not use stdin")
	}
}

func TestBuildGappedSequenceUsesConcatStdin(t *testing.T) {
	job := sequenceJob(false)
	args := Build(job, nil, testCfg())

	if argAfter(t, args, "-f") != "concat" {
		t.Error("gapped sequences must use the concat demuxer")
	}
	if argAfter(t, args, "-i") != "pipe:0" {
		t.Error("concat list must be read from stdin")
	}
	if !NeedsStdin(job) {
		t.Error("gapped sequences are stdin-fed")
	}

	list := ConcatList(job)
	if !strings.HasPrefix(list, "ffconcat version 1.0\n") {
		t.Errorf("concat list missing header: %q", list)
	}
	for _, f := range job.Input.Frames {
		if !strings.Contains(list, "file '"+f.Path+"'") {
			t.Errorf("concat list missing frame %s", f.Path)
		}
	}
	if !strings.Contains(list, "duration 1/12") {
		t.Errorf("concat list missing per-frame duration: %q", list)
	}
}

func TestGifQualityFilterTiers(t *testing.T) {
	base := ScaleFilter(320, 240, 12)
	tests := []struct {
		q    config.Quality
		want string
	}{
		{config.QualityFast, ""},
		{config.QualityBalanced, "max_colors=192"},
		{config.QualityHigh, "max_colors=256:stats_mode=single"},
		{config.QualityUltra, "stats_mode=full"},
	}
	for _, tt := range tests {
		t.Run(string(tt.q), func(t *testing.T) {
			got := gifQualityFilter(base, tt.q)
			if tt.want == "" {
				if got != base {
					t.Errorf("fast tier should skip the palette graph, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("tier %s filter = %q, want substring %q", tt.q, got, tt.want)
			}
		})
	}

	if !strings.Contains(gifQualityFilter(base, config.QualityUltra), "sierra2_4a") {
		t.Error("ultra tier should use sierra2_4a dithering")
	}
}

func TestFormatFPS(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12, "12"},
		{9.6, "9.6"},
		{7.68, "7.68"},
		{6, "6"},
	}
	for _, tt := range tests {
		if got := formatFPS(tt.in); got != tt.want {
			t.Errorf("formatFPS(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- helpers ---

func argAfter(t *testing.T, args []string, flag string) string {
	t.Helper()
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("flag %q not found in %v", flag, args)
	return ""
}

func contains(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}
