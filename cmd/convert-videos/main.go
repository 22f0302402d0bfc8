// Command convert-videos batch-converts MP4 videos and numbered image
// sequences into animated GIF, animated PNG, and discrete PNG-frame outputs
// using ffmpeg.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/JokerFrankZ/convert-videos/internal/batch"
	"github.com/JokerFrankZ/convert-videos/internal/check"
	"github.com/JokerFrankZ/convert-videos/internal/config"
	"github.com/JokerFrankZ/convert-videos/internal/display"
	"github.com/JokerFrankZ/convert-videos/internal/logging"
	"github.com/JokerFrankZ/convert-videos/internal/planner"
	"github.com/JokerFrankZ/convert-videos/internal/term"
)

var cfg = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:   "convert-videos [inputs...]",
	Short: "Batch-convert videos and image sequences to GIF/APNG/PNG frames",
	Long: `convert-videos turns MP4 videos and numbered image sequences into animated
GIFs, animated PNGs, and per-frame PNG dumps via ffmpeg.

Inputs may be video files, single images, image-sequence seed frames (the
sibling frames sharing the numbering scheme are picked up automatically),
directories, or globs. Each input is converted once per requested format
into a per-format subdirectory of the output root.

Examples:
  convert-videos -o out clip.mp4
  convert-videos -o out --formats gif frames/shot_0001.png
  convert-videos -o out --width 480 --height 360 --fps 15 -q high ./media
  convert-videos --check`,
	Args: cobra.ArbitraryArgs,
	RunE: runMain,

	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()
	f.IntVarP(&cfg.Width, "width", "W", cfg.Width, "Output width in pixels")
	f.IntVarP(&cfg.Height, "height", "H", cfg.Height, "Output height in pixels")
	f.IntVar(&cfg.FPS, "fps", cfg.FPS, "Output frame rate")
	f.VarP(&config.QualityValue{P: &cfg.Quality}, "quality", "q", "GIF quality tier (fast, balanced, high, ultra)")
	f.VarP(&config.FormatsValue{P: &cfg.Formats}, "formats", "f", "Comma-separated output formats (gif, apng, png-sequence)")
	f.StringVarP(&cfg.OutputDir, "output", "o", "", "Output directory (per-format subdirectories are created beneath it)")
	f.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "Concurrent conversion jobs")
	f.DurationVar(&cfg.CancelGrace, "cancel-grace", cfg.CancelGrace, "Grace period before a cancelled job is force-killed")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
	f.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Plan the batch and print the jobs without running ffmpeg")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) error {
	log := logging.New(cfg.LogLevel)

	if cfg.CheckOnly {
		check.RunCheck(log)
		return nil
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("no inputs given (see --help)")
	}

	inputs, err := planner.Discover(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no convertible inputs found")
	}

	if err := resolvePaths(inputs); err != nil {
		return err
	}

	req := planner.NewRequest(&cfg, inputs)

	if cfg.DryRun {
		return dryRun(req)
	}

	if err := check.CheckDeps(); err != nil {
		return err
	}

	ctrl := batch.NewController(&cfg, log)
	handle, err := ctrl.Submit(context.Background(), req)
	if err != nil {
		return err
	}

	attachSinks(handle, log)
	watchSignals(handle, log)

	result := handle.Wait()
	display.PrintSummary(os.Stdout, result)

	if result.Failed > 0 || result.Interrupted {
		os.Exit(1)
	}
	return nil
}

// resolvePaths rejects configurations where the output root sits inside an
// input directory, which would let the batch re-discover its own frames.
func resolvePaths(inputs []string) error {
	outAbs, err := filepath.Abs(config.NormalizeDirArg(cfg.OutputDir))
	if err != nil {
		return err
	}
	if resolved, err := filepath.EvalSymlinks(outAbs); err == nil {
		outAbs = resolved
	}
	for _, in := range inputs {
		inAbs, err := filepath.Abs(filepath.Dir(in))
		if err != nil {
			return err
		}
		if resolved, err := filepath.EvalSymlinks(inAbs); err == nil {
			inAbs = resolved
		}
		if err := config.ValidatePaths(inAbs, outAbs); err != nil {
			return fmt.Errorf("%w (input %s)", err, in)
		}
	}
	return nil
}

// dryRun expands the plan and prints the jobs without touching ffmpeg or
// the filesystem.
func dryRun(req planner.Request) error {
	plan, err := planner.Expand(req)
	if err != nil {
		return err
	}
	fmt.Printf("planned %d jobs from %d inputs:\n", len(plan.Jobs), len(plan.Inputs))
	for _, job := range plan.Jobs {
		kind := "video"
		if job.Input.IsSequence() {
			kind = fmt.Sprintf("%d frames", job.Input.FrameCount())
		}
		fmt.Printf("  [%d] %-12s %s (%s) -> %s\n", job.Index, job.Format, job.Input.Path, kind, job.OutputPath)
	}
	return nil
}

// attachSinks wires progress and per-job log lines to the terminal. On a TTY
// progress is rendered as an in-place line; otherwise it is logged at debug
// level to keep non-interactive output clean.
func attachSinks(handle *batch.Handle, log zerolog.Logger) {
	interactive := term.WantConsole()

	progress := func(ev batch.ProgressEvent) {
		if !interactive {
			log.Debug().
				Int("job", ev.JobIndex+1).
				Int("total", ev.TotalJobs).
				Str("format", string(ev.Format)).
				Float64("fraction", ev.Fraction).
				Msg("progress")
			return
		}
		if ev.Determinate {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %-12s %3.0f%%  (overall %3.0f%%)  ",
				ev.JobIndex+1, ev.TotalJobs, ev.Format, ev.Fraction*100, ev.Overall*100)
		} else {
			fmt.Fprintf(os.Stderr, "\r[%d/%d] %-12s working...  (overall %3.0f%%)  ",
				ev.JobIndex+1, ev.TotalJobs, ev.Format, ev.Overall*100)
		}
		if ev.Stage == "done" {
			fmt.Fprintln(os.Stderr)
		}
	}

	handle.Subscribe(progress, func(line string) {
		if interactive {
			fmt.Fprintf(os.Stderr, "\r\033[K")
		}
		log.Info().Msg(line)
	})
}

// watchSignals maps the first SIGINT/SIGTERM to a cooperative cancel and a
// second one to immediate exit.
func watchSignals(handle *batch.Handle, log zerolog.Logger) {
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Warn().Msg("interrupt received, cancelling batch (press again to force quit)")
		handle.Cancel()
		<-sig
		os.Exit(130)
	}()
}
