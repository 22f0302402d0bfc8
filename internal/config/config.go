// Package config holds runtime configuration for the conversion engine:
// defaults, validation, and the typed enum values shared by the planner,
// the ffmpeg runner, and the CLI.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// Format is an output format produced by the engine.
type Format string

const (
	FormatGIF         Format = "gif"          // Animated GIF via palettegen/paletteuse.
	FormatAPNG        Format = "apng"         // Animated PNG (.png container).
	FormatPNGSequence Format = "png-sequence" // Discrete numbered PNG frames.
)

// Extension returns the output file extension for the format, without dot.
// PNG sequences produce a directory of frames, so the per-frame extension
// is returned.
func (f Format) Extension() string {
	switch f {
	case FormatGIF:
		return "gif"
	default:
		return "png"
	}
}

// Subdir returns the per-format subdirectory created under the output
// directory, matching the gif/, apng/, png_sequence/ layout.
func (f Format) Subdir() string {
	if f == FormatPNGSequence {
		return "png_sequence"
	}
	return string(f)
}

// ParseFormat converts a user-supplied string into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gif":
		return FormatGIF, nil
	case "apng", "png":
		return FormatAPNG, nil
	case "png-sequence", "png_sequence", "pngseq":
		return FormatPNGSequence, nil
	}
	return "", fmt.Errorf("invalid format %q (use 'gif', 'apng' or 'png-sequence')", s)
}

// FormatRank orders formats deterministically within one input:
// GIF, then APNG, then PNG sequence.
func FormatRank(f Format) int {
	switch f {
	case FormatGIF:
		return 0
	case FormatAPNG:
		return 1
	default:
		return 2
	}
}

// Quality selects the GIF palette strategy and dither tier.
type Quality string

const (
	QualityFast     Quality = "fast"     // Single pass, no palette generation.
	QualityBalanced Quality = "balanced" // 192-color palette, bayer dither (default).
	QualityHigh     Quality = "high"     // 256-color palette, finer bayer dither.
	QualityUltra    Quality = "ultra"    // Full-stats palette, sierra2_4a dither.
)

// ParseQuality converts a user-supplied string into a Quality.
func ParseQuality(s string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fast":
		return QualityFast, nil
	case "balanced":
		return QualityBalanced, nil
	case "high":
		return QualityHigh, nil
	case "ultra":
		return QualityUltra, nil
	}
	return "", fmt.Errorf("invalid quality %q (use 'fast', 'balanced', 'high' or 'ultra')", s)
}

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by the CLI before being passed (by pointer) to packages that
// need it.
type Config struct {
	// Transform parameters shared by every job in a batch.
	Width   int     // Output width in pixels. Default: 320.
	Height  int     // Output height in pixels. Default: 240.
	FPS     int     // Output frames per second. Default: 12.
	Quality Quality // GIF palette tier. Default: balanced.

	// Requested output formats, kept in the user-given order; the planner
	// re-sorts per input into the deterministic GIF, APNG, PNG-sequence order.
	Formats []Format

	// Output root. Per-format subdirectories are created beneath it at
	// batch start.
	OutputDir string

	// Workers bounds how many encode subprocesses may be in flight at
	// once. Default: 1 (strictly sequential).
	Workers int

	// CancelGrace is how long the runner waits after a graceful interrupt
	// before force-killing the subprocess. Default: 3s.
	CancelGrace time.Duration

	// PollInterval bounds the latency of honoring pause/cancel during a
	// long-running job. Default: 1s.
	PollInterval time.Duration

	// APNG size tuning (original defaults): target output size and the
	// fps floor the tuner will not go below.
	APNGTargetBytes int64   // Default: 2 MiB.
	APNGMinFPS      float64 // Default: 6.

	// Display and logging.
	LogLevel  string // zerolog level name. Default: "info".
	CheckOnly bool
	DryRun    bool
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() Config {
	return Config{
		Width:           320,
		Height:          240,
		FPS:             12,
		Quality:         QualityBalanced,
		Formats:         []Format{FormatGIF, FormatAPNG},
		Workers:         1,
		CancelGrace:     3 * time.Second,
		PollInterval:    time.Second,
		APNGTargetBytes: 2 << 20,
		APNGMinFPS:      6,
		LogLevel:        "info",
	}
}

// Validate checks invariants the planner and runner rely on: positive
// dimensions and frame rate, a non-empty de-duplicated format set, and a
// sane worker count.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive (got %dx%d)", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive (got %d)", c.FPS)
	}
	switch c.Quality {
	case QualityFast, QualityBalanced, QualityHigh, QualityUltra:
		// valid
	default:
		return errors.New("invalid quality (use 'fast', 'balanced', 'high' or 'ultra')")
	}
	if len(c.Formats) == 0 {
		return errors.New("at least one output format is required")
	}
	seen := make(map[Format]bool, len(c.Formats))
	deduped := c.Formats[:0]
	for _, f := range c.Formats {
		switch f {
		case FormatGIF, FormatAPNG, FormatPNGSequence:
			// valid
		default:
			return fmt.Errorf("invalid format %q", f)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		deduped = append(deduped, f)
	}
	c.Formats = deduped

	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", c.Workers)
	}
	if c.CancelGrace <= 0 {
		return errors.New("cancel grace period must be positive")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}

	if c.CheckOnly {
		return nil
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// ValidatePaths ensures the resolved output directory does not sit inside
// (or equal) any resolved input directory, which would let a batch discover
// its own freshly written frames. Both arguments must be absolute,
// symlink-resolved paths.
func ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside an input directory")
	}
	return nil
}
