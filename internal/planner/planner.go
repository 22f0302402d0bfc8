package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/JokerFrankZ/convert-videos/internal/config"
	"github.com/JokerFrankZ/convert-videos/internal/sequence"
)

// Expand turns a Request into a Plan: resolve sequences, order the cross
// product of inputs × formats, compute collision-checked output paths, and
// clamp dimensions. Fails with *PlanError before any subprocess is spawned.
//
// Job order is deterministic: inputs in request order, formats per input in
// GIF, APNG, PNG-sequence order.
func Expand(req Request) (*Plan, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	if err := checkWritable(req.OutputDir); err != nil {
		return nil, err
	}

	inputs, err := resolveInputs(req.Inputs)
	if err != nil {
		return nil, err
	}

	formats := append([]config.Format(nil), req.Formats...)
	sort.SliceStable(formats, func(i, j int) bool {
		return config.FormatRank(formats[i]) < config.FormatRank(formats[j])
	})

	width, height := ClampEven(req.Width), ClampEven(req.Height)

	plan := &Plan{Inputs: inputs}
	dirs := make(map[string]bool)
	owners := make(map[string]string) // output path → input path claiming it

	for inIdx, in := range inputs {
		for _, f := range formats {
			outPath, outDir := outputPaths(req.OutputDir, f, in.Stem)

			if owner, taken := owners[outPath]; taken {
				return nil, &PlanError{Reason: fmt.Sprintf(
					"output collision: %q claimed by both %q and %q", outPath, owner, in.Path)}
			}
			owners[outPath] = in.Path

			plan.Jobs = append(plan.Jobs, Job{
				Index:        len(plan.Jobs),
				InputIndex:   inIdx,
				Input:        in,
				Format:       f,
				OutputPath:   outPath,
				OutputSubdir: outDir,
				Width:        width,
				Height:       height,
				FPS:          req.FPS,
				Quality:      req.Quality,
			})
			if !dirs[outDir] {
				dirs[outDir] = true
				plan.Dirs = append(plan.Dirs, outDir)
			}
		}
	}
	return plan, nil
}

func validate(req *Request) error {
	if len(req.Inputs) == 0 {
		return &PlanError{Reason: "no inputs selected"}
	}
	if len(req.Formats) == 0 {
		return &PlanError{Reason: "no output formats requested"}
	}
	if req.Width <= 0 || req.Height <= 0 {
		return &PlanError{Reason: fmt.Sprintf("dimensions must be positive (got %dx%d)", req.Width, req.Height)}
	}
	if req.FPS <= 0 {
		return &PlanError{Reason: fmt.Sprintf("fps must be positive (got %d)", req.FPS)}
	}
	if req.OutputDir == "" {
		return &PlanError{Reason: "output directory is required"}
	}
	return nil
}

// resolveInputs runs sequence detection on image seeds and wraps videos
// directly. Inputs resolving to the same underlying file or sequence are
// de-duplicated (two seed frames of one sequence are the same input).
func resolveInputs(paths []string) ([]*sequence.Input, error) {
	var inputs []*sequence.Input
	seen := make(map[string]bool)

	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			return nil, &PlanError{Reason: fmt.Sprintf("input %q", p), Err: err}
		}

		var in *sequence.Input
		if IsImage(p) {
			resolved, err := sequence.Resolve(p)
			if err != nil {
				return nil, &PlanError{Reason: fmt.Sprintf("resolve sequence for %q", p), Err: err}
			}
			in = resolved
		} else {
			in = sequence.Video(p)
		}

		key := in.Path
		if in.IsSequence() {
			key = in.Frames[0].Path
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// outputPaths computes the output file (or frame pattern) and the directory
// that must exist for it, using the per-format subdirectory layout:
// gif/STEM.gif, apng/STEM.png, png_sequence/STEM/STEM_%04d.png.
func outputPaths(root string, f config.Format, stem string) (outPath, outDir string) {
	switch f {
	case config.FormatPNGSequence:
		outDir = filepath.Join(root, f.Subdir(), stem)
		outPath = filepath.Join(outDir, stem+"_%04d."+f.Extension())
	default:
		outDir = filepath.Join(root, f.Subdir())
		outPath = filepath.Join(outDir, stem+"."+f.Extension())
	}
	return outPath, outDir
}

// ClampEven rounds a dimension down to the nearest even value, minimum 2.
// ffmpeg's scale into 4:2:0-subsampled intermediates and the crop filter
// reject odd dimensions, so every format gets uniformly even geometry.
func ClampEven(n int) int {
	if n < 2 {
		return 2
	}
	return n &^ 1
}

// checkWritable verifies the output location without mutating the
// filesystem: the nearest existing ancestor of dir must be a writable
// directory. Actual directory creation is the controller's one-time batch
// side effect.
func checkWritable(dir string) error {
	probe := dir
	for {
		fi, err := os.Stat(probe)
		if err == nil {
			if !fi.IsDir() {
				return &PlanError{Reason: fmt.Sprintf("output path %q is not a directory", probe)}
			}
			if fi.Mode().Perm()&0o200 == 0 {
				return &PlanError{Reason: fmt.Sprintf("output directory %q is not writable", probe)}
			}
			return nil
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return &PlanError{Reason: fmt.Sprintf("output directory %q", dir), Err: err}
		}
		probe = parent
	}
}
